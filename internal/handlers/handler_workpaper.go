package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

// workpaperHandler handles HTTP requests for workpaper locking.
type workpaperHandler struct {
	lockService portssvc.WorkpaperLockSvcFacade
}

// newWorkpaperHandler creates a new workpaperHandler.
func newWorkpaperHandler(lockService portssvc.WorkpaperLockSvcFacade) *workpaperHandler {
	return &workpaperHandler{lockService: lockService}
}

// registerWorkpaperRoutes registers the workpaper lock routes.
func registerWorkpaperRoutes(rg *gin.RouterGroup, lockService portssvc.WorkpaperLockSvcFacade) {
	h := newWorkpaperHandler(lockService)

	workpapers := rg.Group("/workpapers")
	{
		workpapers.POST("/transactions-lock", h.lockTransactions)
		workpapers.GET("/:workpaperID/links", h.getWorkpaperLinks)
	}
}

// lockTransactions godoc
// @Summary Lock transactions into a workpaper
// @Description Locks the eligible transactions and freezes a snapshot per locked row
// @Tags workpapers
// @Accept  json
// @Produce  json
// @Param   request body dto.WorkpaperLockRequest true "Transactions and workpaper"
// @Success 200 {object} domain.LockResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Role may not lock transactions"
// @Security BearerAuth
// @Router /workpapers/transactions-lock [post]
func (h *workpaperHandler) lockTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.WorkpaperLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LockTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.lockService.LockForWorkpaper(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to lock transactions")
		return
	}

	c.JSON(http.StatusOK, result)
}

// getWorkpaperLinks godoc
// @Summary Get a workpaper's frozen snapshots
// @Description Retrieves the snapshot links captured when transactions were locked into the workpaper
// @Tags workpapers
// @Produce  json
// @Param   workpaperID path string true "Workpaper ID"
// @Success 200 {array} dto.WorkpaperLinkResponse
// @Failure 403 {object} map[string]string "Role may not read workpapers"
// @Security BearerAuth
// @Router /workpapers/{workpaperID}/links [get]
func (h *workpaperHandler) getWorkpaperLinks(c *gin.Context) {
	workpaperID := c.Param("workpaperID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	links, err := h.lockService.Links(c.Request.Context(), workpaperID, actor)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve workpaper links")
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkpaperLinkResponses(links))
}
