package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
	"github.com/fdcbooks/tax_ledger_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	registerTransactionRoutes(v1, services.Transaction, services.WorkpaperLock)
	registerWorkpaperRoutes(v1, services.WorkpaperLock)
	registerClientRoutes(v1, services.ClientSync)
	registerImportRoutes(v1, services.Import)
	registerCodeSetRoutes(v1)
}

// respondWithError translates domain errors into HTTP responses. Field-lock
// and validation failures are bad requests the caller can correct; state
// conflicts are 409 so the caller knows to re-read.
func respondWithError(c *gin.Context, err error, fallbackMsg string) {
	var fieldLockedErr *apperrors.FieldLockedError
	if errors.As(err, &fieldLockedErr) {
		body := gin.H{"error": fieldLockedErr.Error(), "lockedFields": fieldLockedErr.Fields}
		if len(fieldLockedErr.TransactionIDs) > 0 {
			body["transactionIDs"] = fieldLockedErr.TransactionIDs
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "violations": validationErr.Violations})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
