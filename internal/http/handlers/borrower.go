package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	"github.com/simplelender/backend/internal/pagination"
)

type BorrowerService interface {
	Upsert(ctx context.Context, in borrowerdomain.UpsertInput, borrowerID, lenderID string) (*borrowerdomain.Entity, error)
	List(ctx context.Context, search, lenderID string, page, limit int) (*pagination.Page[borrowerdomain.Summary], error)
	Delete(ctx context.Context, borrowerID, lenderID string) error
	Get(ctx context.Context, borrowerID, lenderID string) (*borrowerdomain.Details, error)
}

type BorrowerHandler struct {
	borrowerService BorrowerService
}

type borrowerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	DOB       string `json:"dob" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

type listQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func NewBorrowerHandler(borrowerService BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService}
}

func (h *BorrowerHandler) Upsert(c *gin.Context) {
	var req borrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	borrowerID := strings.TrimSpace(c.Query("borrower_id"))
	b, err := h.borrowerService.Upsert(c.Request.Context(), borrowerdomain.UpsertInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		DOB:       req.DOB,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Pincode:   req.Pincode,
		Phone:     req.Phone,
	}, borrowerID, lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Borrower added successfully"
	if borrowerID != "" {
		message = "Borrower updated successfully"
	}
	respond(c, http.StatusOK, message, gin.H{"borrower_id": b.ID})
}

func (h *BorrowerHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.borrowerService.List(c.Request.Context(), c.Query("search"), lenderID(c), q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Borrowers retrieved successfully", gin.H{"data": page})
}

func (h *BorrowerHandler) Get(c *gin.Context) {
	b, err := h.borrowerService.Get(c.Request.Context(), c.Param("borrowerId"), lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Borrower retrieved successfully", gin.H{"data": b})
}

func (h *BorrowerHandler) Delete(c *gin.Context) {
	if err := h.borrowerService.Delete(c.Request.Context(), c.Param("borrowerId"), lenderID(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Borrower deleted successfully", nil)
}
