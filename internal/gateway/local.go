package gateway

import (
	"context"

	"github.com/skintellect/storefront/internal/model"
)

// LocalClient calls a Service in process. It satisfies the gateway port of the shopper
// stores when the storefront and the gateway share a binary.
type LocalClient struct {
	svc *Service
}

func NewLocalClient(svc *Service) *LocalClient {
	return &LocalClient{svc: svc}
}

func (c *LocalClient) Compare(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error) {
	return c.svc.Compare(ctx, CompareRequest{Source: &source, Target: &target})
}

func (c *LocalClient) SafetyReport(ctx context.Context, ingredients []string) (string, error) {
	out, err := c.svc.SafetyAudit(ctx, SafetyAuditRequest{Ingredients: ingredients})
	if err != nil {
		return "", err
	}
	return out.Report, nil
}
