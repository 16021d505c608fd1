package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetaHandler struct {
	env     string
	version string
	routes  []string
}

func NewMetaHandler(env, version string, routes []string) *MetaHandler {
	return &MetaHandler{env: env, version: version, routes: routes}
}

func (h *MetaHandler) GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "SimpleLender Backend",
		"version": h.version,
		"env":     h.env,
		"apis":    h.routes,
	})
}
