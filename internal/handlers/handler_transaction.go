package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

// transactionHandler handles HTTP requests for the staff transaction ledger.
type transactionHandler struct {
	txnService  portssvc.TransactionSvcFacade
	lockService portssvc.WorkpaperLockSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(txnService portssvc.TransactionSvcFacade, lockService portssvc.WorkpaperLockSvcFacade) *transactionHandler {
	return &transactionHandler{
		txnService:  txnService,
		lockService: lockService,
	}
}

// registerTransactionRoutes registers the staff ledger routes.
func registerTransactionRoutes(rg *gin.RouterGroup, txnService portssvc.TransactionSvcFacade, lockService portssvc.WorkpaperLockSvcFacade) {
	h := newTransactionHandler(txnService, lockService)

	txns := rg.Group("/bookkeeper/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.POST("/bulk-update", h.bulkUpdateTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.PATCH("/:transactionID", h.updateTransaction)
		txns.GET("/:transactionID/history", h.getTransactionHistory)
		txns.POST("/:transactionID/unlock", h.unlockTransaction)
	}
}

// createTransaction godoc
// @Summary Create a manual transaction
// @Description Records a manual ledger entry at status NEW
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Role may not create transactions"
// @Security BearerAuth
// @Router /bookkeeper/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.txnService.Create(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Retrieves a filtered, cursor-paginated page of transactions
// @Tags transactions
// @Produce  json
// @Param   params query dto.ListTransactionsParams false "Filter parameters"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Failure 403 {object} map[string]string "Role may not list transactions"
// @Security BearerAuth
// @Router /bookkeeper/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, err := h.txnService.List(c.Request.Context(), params, actor)
	if err != nil {
		respondWithError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, page)
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves one transaction by ID
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /bookkeeper/transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	transactionID := c.Param("transactionID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.txnService.Get(c.Request.Context(), transactionID, actor)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Applies a staff field patch; amount and date are immutable
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   updates body dto.UpdateTransactionRequest true "Field patch"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error or locked fields"
// @Failure 403 {object} map[string]string "Role may not update transactions"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction state changed concurrently"
// @Security BearerAuth
// @Router /bookkeeper/transactions/{transactionID} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.txnService.Update(c.Request.Context(), transactionID, req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// bulkUpdateTransactions godoc
// @Summary Bulk update transactions
// @Description Applies one patch to every transaction matching the criteria; all or nothing
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkUpdateRequest true "Criteria and patch"
// @Success 200 {object} map[string]int "Number of updated transactions"
// @Failure 400 {object} map[string]string "Validation error or locked rows"
// @Failure 403 {object} map[string]string "Role may not update transactions"
// @Failure 404 {object} map[string]string "No transactions matched"
// @Security BearerAuth
// @Router /bookkeeper/transactions/bulk-update [post]
func (h *transactionHandler) bulkUpdateTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkUpdateTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.txnService.BulkUpdate(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to bulk update transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// getTransactionHistory godoc
// @Summary Get a transaction's audit trail
// @Description Retrieves all history entries for a transaction, oldest first
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {array} dto.HistoryEntryResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /bookkeeper/transactions/{transactionID}/history [get]
func (h *transactionHandler) getTransactionHistory(c *gin.Context) {
	transactionID := c.Param("transactionID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.txnService.History(c.Request.Context(), transactionID, actor)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction history")
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponses(entries))
}

// unlockTransaction godoc
// @Summary Unlock a locked transaction
// @Description Admin-only; returns the transaction to READY_FOR_WORKPAPER with a mandatory justification comment
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   request body dto.UnlockRequest true "Justification comment"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Comment too short"
// @Failure 403 {object} map[string]string "Only admin may unlock"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not locked"
// @Security BearerAuth
// @Router /bookkeeper/transactions/{transactionID}/unlock [post]
func (h *transactionHandler) unlockTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UnlockTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.lockService.Unlock(c.Request.Context(), transactionID, req.Comment, actor)
	if err != nil {
		respondWithError(c, err, "Failed to unlock transaction")
		return
	}

	logger.Info("Transaction unlocked via API", slog.String("transaction_id", transactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
