package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skintellect/storefront/internal/catalog"
	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/store"
)

const (
	compareUnavailableMessage = "Comparison is currently unavailable."
	auditUnavailableMessage   = "Safety audit is currently unavailable."
)

func GetComparison() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, currentSession(c).Comparison.Snapshot())
	}
}

// ToggleComparison handles POST /api/session/comparison/:productId.
func ToggleComparison(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, found := lookupProduct(c, cat)
		if !found {
			return
		}
		sess := currentSession(c)
		cmp := sess.Comparison
		was := cmp.IsInComparison(p.ID)
		before := len(cmp.Selection())
		now := cmp.ToggleProductInComparison(p)

		switch {
		case was:
			sess.Toasts.Show("Removed from comparison", store.ToastInfo)
		case !now:
			sess.Toasts.Show("You can compare up to two products at a time", store.ToastWarning)
		case before == 1:
			sess.Toasts.Show("Added to comparison. Select another product or compare now.", store.ToastInfo)
		default:
			sess.Toasts.Show("Added to comparison", store.ToastInfo)
		}
		ok(c, cmp.Snapshot())
	}
}

// RunComparison handles POST /api/session/comparison/run.
func RunComparison() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if err := sess.Comparison.RunSelectedComparison(c.Request.Context()); err != nil {
			fail(c, runError(sess, err, compareUnavailableMessage))
			return
		}
		ok(c, sess.Comparison.Snapshot())
	}
}

func ResetComparison() gin.HandlerFunc {
	return func(c *gin.Context) {
		cmp := currentSession(c).Comparison
		cmp.ResetComparison()
		ok(c, cmp.Snapshot())
	}
}

// RunSafetyAudit handles POST /api/session/audit/:productId.
func RunSafetyAudit(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, found := lookupProduct(c, cat)
		if !found {
			return
		}
		sess := currentSession(c)
		if err := sess.Comparison.RunSafetyAudit(c.Request.Context(), p); err != nil {
			fail(c, runError(sess, err, auditUnavailableMessage))
			return
		}
		ok(c, sess.Comparison.Snapshot())
	}
}

func CloseSafetyAudit() gin.HandlerFunc {
	return func(c *gin.Context) {
		cmp := currentSession(c).Comparison
		cmp.CloseSafetyModal()
		ok(c, cmp.Snapshot())
	}
}

// runError maps a comparison store failure to its envelope. Gateway failures also queue
// an error toast for the shopper.
func runError(sess *store.Session, err error, unavailable string) error {
	switch {
	case errors.Is(err, store.ErrSelectionIncomplete):
		return errx.New(err, http.StatusBadRequest, errx.CodeValidation, "Select two products to compare")
	case errors.Is(err, store.ErrComparisonInFlight), errors.Is(err, store.ErrAuditInFlight):
		return errx.Conflict(err, err.Error())
	}

	sess.Toasts.Show(unavailable, store.ToastError)
	if errors.Is(err, context.DeadlineExceeded) {
		return errx.New(err, http.StatusGatewayTimeout, errx.CodeAI, unavailable)
	}
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return errx.Gateway(err, unavailable)
}
