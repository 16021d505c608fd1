package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/simplelender/backend/internal/apperror"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation: http.StatusBadRequest,
	apperror.KindAuth:       http.StatusUnauthorized,
	apperror.KindAuthz:      http.StatusForbidden,
	apperror.KindNotFound:   http.StatusNotFound,
	apperror.KindConflict:   http.StatusConflict,
	apperror.KindInternal:   http.StatusInternalServerError,
}

var registerOnce sync.Once

// UseJSONFieldNames makes binding errors report json field names.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func respond(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"status": status, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "code", appErr.Code, "error", appErr.Err)
	}

	body := gin.H{"status": status, "message": appErr.Message, "error": appErr.Code}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError converts a ShouldBind failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return apperror.Validation("invalid_request", "Validation error", fields...)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Validation("request_too_large", "Request body too large")
	}
	return apperror.Validation("invalid_request", "Malformed request body")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "invalid value"
	}
}

func lenderID(c *gin.Context) string {
	return c.GetString("user_id")
}
