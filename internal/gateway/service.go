package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// MaxAuditIngredients bounds the ingredient list of a safety audit request.
const MaxAuditIngredients = 100

type CompareRequest struct {
	Source *model.Product `json:"source" binding:"required"`
	Target *model.Product `json:"target" binding:"required"`
}

type SafetyAuditRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1,max=100,dive,required"`
}

// Service validates gateway requests and forwards them to an Analyst. Every error it
// returns is an *errx.AppError carrying the envelope code and user-facing message.
type Service struct {
	analyst  Analyst
	validate *validator.Validate
}

func NewService(analyst Analyst) *Service {
	return &Service{analyst: analyst, validate: NewValidator()}
}

// Compare validates req and returns the analyst's comparison.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*model.AIAnalysis, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, errx.Validation(FieldErrors(err)...)
	}

	analysis, err := s.analyst.CompareProducts(ctx, *req.Source, *req.Target)
	if err != nil {
		logx.Error().Err(err).
			Str("source_id", req.Source.ID).
			Str("target_id", req.Target.ID).
			Msg("Compare error")
		return nil, errx.Gateway(err, errx.CompareFailedMessage)
	}
	return analysis, nil
}

// SafetyAudit validates req and returns the analyst's markdown report.
func (s *Service) SafetyAudit(ctx context.Context, req SafetyAuditRequest) (*model.SafetyReport, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, errx.Validation(FieldErrors(err)...)
	}

	report, err := s.analyst.AnalyzeIngredientSafety(ctx, req.Ingredients)
	if err != nil {
		logx.Error().Err(err).Int("ingredients", len(req.Ingredients)).Msg("Safety audit error")
		return nil, errx.Gateway(err, errx.SafetyFailedMessage)
	}
	return &model.SafetyReport{Report: report}, nil
}

// FieldErrors flattens validator output into envelope details. Errors that are not
// validation failures become a single detail without a field.
func FieldErrors(err error) []errx.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []errx.FieldError{{Rule: "body", Message: err.Error()}}
	}
	out := make([]errx.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out = append(out, errx.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: ruleMessage(field, fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}
