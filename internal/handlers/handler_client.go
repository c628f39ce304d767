package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

// clientHandler handles HTTP requests from the client self-service channel.
type clientHandler struct {
	syncService portssvc.ClientSyncSvcFacade
}

// newClientHandler creates a new clientHandler.
func newClientHandler(syncService portssvc.ClientSyncSvcFacade) *clientHandler {
	return &clientHandler{syncService: syncService}
}

// registerClientRoutes registers the client channel routes.
func registerClientRoutes(rg *gin.RouterGroup, syncService portssvc.ClientSyncSvcFacade) {
	h := newClientHandler(syncService)

	client := rg.Group("/client/transactions")
	{
		client.POST("", h.createClientTransaction)
		client.PATCH("/:transactionID", h.updateClientTransaction)
	}
}

// createClientTransaction godoc
// @Summary Submit a transaction from the client app
// @Description Records a client submission at status PENDING with source CLIENT_APP
// @Tags client
// @Accept  json
// @Produce  json
// @Param   transaction body dto.ClientCreateTransactionRequest true "Submission details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Role may not use the client channel"
// @Security BearerAuth
// @Router /client/transactions [post]
func (h *clientHandler) createClientTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ClientCreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateClientTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.syncService.CreateFromClient(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// updateClientTransaction godoc
// @Summary Amend a client submission
// @Description Updates client-origin fields; rejected once the transaction has been reviewed
// @Tags client
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   updates body dto.ClientUpdateTransactionRequest true "Field patch"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already reviewed"
// @Security BearerAuth
// @Router /client/transactions/{transactionID} [patch]
func (h *clientHandler) updateClientTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.ClientUpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateClientTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.syncService.UpdateFromClient(c.Request.Context(), transactionID, req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
