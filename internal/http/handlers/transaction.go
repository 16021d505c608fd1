package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/dates"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
	"github.com/simplelender/backend/internal/pagination"
)

type TransactionService interface {
	Add(ctx context.Context, in txndomain.Input, lenderID string) (*txndomain.Entity, error)
	Update(ctx context.Context, txnID string, in txndomain.Input, lenderID string) (*txndomain.Entity, error)
	Delete(ctx context.Context, txnID, lenderID string) error
	Get(ctx context.Context, txnID, lenderID string) (*txndomain.ListItem, error)
	List(ctx context.Context, in txndomain.ListInput) (*pagination.Page[txndomain.ListItem], error)
	Summary(ctx context.Context, lenderID string) (*txndomain.Summary, error)
}

type TransactionHandler struct {
	txnService TransactionService
}

// Amounts accept JSON numbers or numeric strings.
type transactionRequest struct {
	BorrowerID      string           `json:"borrower_id" binding:"required"`
	PrincipalAmount *decimal.Decimal `json:"principal_amount" binding:"required"`
	InterestType    string           `json:"interest_type" binding:"required,oneof=percentage flat"`
	InterestValue   *decimal.Decimal `json:"interest_value" binding:"required"`
	Frequency       string           `json:"frequency" binding:"omitempty,oneof=daily monthly yearly"`
	TransactionDate string           `json:"transaction_date" binding:"required"`
	Note            string           `json:"note"`
}

type transactionListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Search string `form:"search"`
	Email  string `form:"email"`
	Status string `form:"status"`
	SortBy string `form:"sort_by"`
}

func NewTransactionHandler(txnService TransactionService) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

func (r transactionRequest) toInput() (txndomain.Input, error) {
	date, err := dates.Parse(r.TransactionDate)
	if err != nil {
		return txndomain.Input{}, apperror.Validation("invalid_transaction", "Validation error",
			apperror.FieldError{Field: "transaction_date", Message: err.Error()})
	}
	return txndomain.Input{
		BorrowerID:      r.BorrowerID,
		PrincipalAmount: *r.PrincipalAmount,
		InterestType:    txndomain.InterestType(r.InterestType),
		InterestValue:   *r.InterestValue,
		Frequency:       txndomain.Frequency(r.Frequency),
		TransactionDate: date,
		Note:            r.Note,
	}, nil
}

func (h *TransactionHandler) Add(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	txn, err := h.txnService.Add(c.Request.Context(), in, lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Transaction added", gin.H{"transaction_id": txn.ID, "data": txn})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	txn, err := h.txnService.Update(c.Request.Context(), c.Param("txnId"), in, lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction updated", gin.H{"data": txn})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.txnService.Delete(c.Request.Context(), c.Param("txnId"), lenderID(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction deleted", nil)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.txnService.Get(c.Request.Context(), c.Param("txnId"), lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction fetched", gin.H{"data": txn})
}

func (h *TransactionHandler) List(c *gin.Context) {
	var q transactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.txnService.List(c.Request.Context(), txndomain.ListInput{
		Page:         q.Page,
		Limit:        q.Limit,
		BorrowerName: q.Search,
		Email:        q.Email,
		Status:       q.Status,
		SortBy:       q.SortBy,
		LenderID:     lenderID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction list fetched", gin.H{"data": page})
}

func (h *TransactionHandler) Summary(c *gin.Context) {
	sum, err := h.txnService.Summary(c.Request.Context(), lenderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Ledger summary fetched", gin.H{"data": sum})
}
