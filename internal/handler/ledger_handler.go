package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// LedgerHandler exposes an AccountLedger over HTTP.
type LedgerHandler struct {
	ledger interfaces.AccountLedger
}

type CreateAccountRequest struct {
	Owner string `json:"owner" validate:"max=256"`
}

// AmountRequest carries a deposit or withdrawal amount. The pointer lets
// "required" tell a missing amount apart from zero; the sign is checked by
// the ledger so its error ordering holds over HTTP too.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type CreateAccountResponse struct {
	AccountID string `json:"account_id"`
}

type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type TransactionsResponse struct {
	AccountID    string            `json:"account_id"`
	Transactions []decimal.Decimal `json:"transactions"`
}

func NewLedgerHandler(ledger interfaces.AccountLedger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Register mounts every route on r.
func (h *LedgerHandler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/version", h.Version)
	r.POST("/accounts", h.CreateAccount)
	r.GET("/accounts/:accountID", h.GetAccount)
	r.POST("/accounts/:accountID/deposit", h.Deposit)
	r.POST("/accounts/:accountID/withdraw", h.Withdraw)
	r.GET("/accounts/:accountID/balance", h.Balance)
	r.GET("/accounts/:accountID/transactions", h.Transactions)
	r.GET("/ledgerEntries", h.LedgerEntries)
}

func (h *LedgerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *LedgerHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.ledger.Version()})
}

func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	// an empty body is an account with no owner name
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondWithError(c, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	if validationErrors := ValidateRequest(req); validationErrors != nil {
		RespondWithValidationError(c, validationErrors)
		return
	}

	accountID, err := h.ledger.CreateAccount(c.Request.Context(), req.Owner)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateAccountResponse{AccountID: accountID})
}

func (h *LedgerHandler) GetAccount(c *gin.Context) {
	account, err := h.ledger.Account(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *LedgerHandler) Deposit(c *gin.Context) {
	h.postAmount(c, h.ledger.Deposit)
}

func (h *LedgerHandler) Withdraw(c *gin.Context) {
	h.postAmount(c, h.ledger.Withdraw)
}

func (h *LedgerHandler) postAmount(c *gin.Context, apply func(ctx context.Context, accountId string, amount decimal.Decimal) error) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	if validationErrors := ValidateRequest(req); validationErrors != nil {
		RespondWithValidationError(c, validationErrors)
		return
	}

	if err := apply(c.Request.Context(), c.Param("accountID"), *req.Amount); err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) Balance(c *gin.Context) {
	accountID := c.Param("accountID")

	balance, err := h.ledger.Balance(c.Request.Context(), accountID)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{AccountID: accountID, Balance: balance})
}

func (h *LedgerHandler) Transactions(c *gin.Context) {
	accountID := c.Param("accountID")

	amounts, err := h.ledger.Transactions(c.Request.Context(), accountID)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionsResponse{AccountID: accountID, Transactions: amounts})
}

func (h *LedgerHandler) LedgerEntries(c *gin.Context) {
	ledgerEntries, err := h.ledger.LedgerEntries(c.Request.Context())
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledgerEntries)
}

// respondWithLedgerError maps ledger error codes to HTTP statuses. Anything
// that is not a ledger rule is a backing-store failure.
func respondWithLedgerError(c *gin.Context, err error) {
	var ledgerErr *ledger.Error
	if !errors.As(err, &ledgerErr) {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondWithError(c, http.StatusInternalServerError, "", "Internal server error")
		return
	}

	status := http.StatusBadRequest
	switch ledgerErr.Code {
	case ledger.CodeInvalidAccount:
		status = http.StatusNotFound
	case ledger.CodeInsufficientFunds:
		status = http.StatusConflict
	}
	RespondWithError(c, status, string(ledgerErr.Code), ledgerErr.Message)
}
