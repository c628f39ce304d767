package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// registerCodeSetRoutes registers the closed code set listing, so front ends
// can populate dropdowns without hardcoding the vocabulary.
func registerCodeSetRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookkeeper/code-sets", getCodeSets)
}

// getCodeSets godoc
// @Summary List the closed code sets
// @Description Returns the valid statuses, sources, tax codes, module routings and history actions
// @Tags code-sets
// @Produce  json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /bookkeeper/code-sets [get]
func getCodeSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":       domain.Statuses(),
		"sources":        domain.Sources(),
		"taxCodes":       domain.TaxCodes(),
		"moduleRoutings": domain.ModuleRoutings(),
	})
}
