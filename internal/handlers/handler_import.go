package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

// importHandler handles HTTP requests for bank/OCR batch ingestion.
type importHandler struct {
	importService portssvc.ImportSvcFacade
}

// newImportHandler creates a new importHandler.
func newImportHandler(importService portssvc.ImportSvcFacade) *importHandler {
	return &importHandler{importService: importService}
}

// registerImportRoutes registers the ingestion routes.
func registerImportRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvcFacade) {
	h := newImportHandler(importService)

	imports := rg.Group("/imports")
	{
		imports.POST("/:source", h.importBatch)
		imports.POST("/:source/csv", h.importCSV)
	}
}

// parseSource normalizes the :source path parameter.
func parseSource(raw string) (domain.Source, bool) {
	source := domain.Source(strings.ToUpper(raw))
	if source != domain.SourceBank && source != domain.SourceOCR {
		return "", false
	}
	return source, true
}

// importBatch godoc
// @Summary Import a JSON batch
// @Description Ingests a batch of rows from a bank or OCR feed; one bad row rejects the whole batch
// @Tags imports
// @Accept  json
// @Produce  json
// @Param   source path string true "Feed source (bank or ocr)"
// @Param   request body dto.ImportBatchRequest true "Batch payload"
// @Success 200 {object} dto.ImportResultResponse
// @Failure 400 {object} map[string]string "Invalid input format or bad rows"
// @Failure 403 {object} map[string]string "Role may not import"
// @Security BearerAuth
// @Router /imports/{source} [post]
func (h *importHandler) importBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	source, ok := parseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source must be bank or ocr"})
		return
	}

	var req dto.ImportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.importService.ImportBatch(c.Request.Context(), source, req.ClientID, req.Rows, actor)
	if err != nil {
		respondWithError(c, err, "Failed to import batch")
		return
	}

	c.JSON(http.StatusOK, dto.ImportResultResponse{Imported: count, Source: string(source)})
}

// importCSV godoc
// @Summary Import a CSV feed export
// @Description Ingests a multipart CSV file from a bank or OCR feed as one atomic batch
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   source path string true "Feed source (bank or ocr)"
// @Param   clientID formData string true "Owning client"
// @Param   file formData file true "CSV file"
// @Success 200 {object} dto.ImportResultResponse
// @Failure 400 {object} map[string]string "Invalid file or bad rows"
// @Failure 403 {object} map[string]string "Role may not import"
// @Security BearerAuth
// @Router /imports/{source}/csv [post]
func (h *importHandler) importCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	source, ok := parseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source must be bank or ocr"})
		return
	}

	clientID := c.PostForm("clientID")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing CSV file in ImportCSV", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.importService.ImportCSV(c.Request.Context(), source, clientID, file, actor)
	if err != nil {
		respondWithError(c, err, "Failed to import CSV")
		return
	}

	c.JSON(http.StatusOK, dto.ImportResultResponse{Imported: count, Source: string(source)})
}
