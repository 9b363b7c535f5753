package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
)

type fakeAnalyst struct {
	analysis *model.AIAnalysis
	report   string
	err      error

	gotSource, gotTarget model.Product
	gotIngredients       []string
}

func (f *fakeAnalyst) CompareProducts(_ context.Context, source, target model.Product) (*model.AIAnalysis, error) {
	f.gotSource, f.gotTarget = source, target
	return f.analysis, f.err
}

func (f *fakeAnalyst) AnalyzeIngredientSafety(_ context.Context, ingredients []string) (string, error) {
	f.gotIngredients = ingredients
	return f.report, f.err
}

func testProduct(id string) *model.Product {
	return &model.Product{
		ID: id, Brand: "Brand", Name: "Name " + id, Category: "Serum", Price: 20,
		Ingredients: []string{"Water", "Glycerin"}, ImageURL: "https://example.com/" + id + ".jpg",
	}
}

func testAnalysis() *model.AIAnalysis {
	return &model.AIAnalysis{
		MatchScore: 70, Summary: "Close match.", KeyIngredients: []model.KeyIngredient{},
		PriceAnalysis: "Cheaper.", Verdict: model.VerdictFairPrice,
	}
}

func TestServiceCompare(t *testing.T) {
	analyst := &fakeAnalyst{analysis: testAnalysis()}
	svc := NewService(analyst)

	got, err := svc.Compare(context.Background(), CompareRequest{Source: testProduct("1"), Target: testProduct("2")})

	require.NoError(t, err)
	assert.Equal(t, testAnalysis(), got)
	assert.Equal(t, "1", analyst.gotSource.ID)
	assert.Equal(t, "2", analyst.gotTarget.ID)
}

func TestServiceCompareAcceptsEmptyOptionalStrings(t *testing.T) {
	sparse := testProduct("2")
	sparse.Brand, sparse.Category, sparse.ImageURL = "", "", ""
	sparse.Ingredients = []string{"Water", ""}
	analyst := &fakeAnalyst{analysis: testAnalysis()}
	svc := NewService(analyst)

	_, err := svc.Compare(context.Background(), CompareRequest{Source: testProduct("1"), Target: sparse})

	require.NoError(t, err)
	assert.Equal(t, "2", analyst.gotTarget.ID)
}

func TestServiceCompareValidation(t *testing.T) {
	noIngredients := testProduct("2")
	noIngredients.Ingredients = nil
	negative := testProduct("2")
	negative.Price = -1

	tests := []struct {
		name      string
		req       CompareRequest
		wantField string
		wantRule  string
	}{
		{name: "missing target", req: CompareRequest{Source: testProduct("1")}, wantField: "target", wantRule: "required"},
		{name: "no ingredients", req: CompareRequest{Source: testProduct("1"), Target: noIngredients}, wantField: "target.ingredients", wantRule: "required"},
		{name: "negative price", req: CompareRequest{Source: testProduct("1"), Target: negative}, wantField: "target.price", wantRule: "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyst := &fakeAnalyst{analysis: testAnalysis()}
			svc := NewService(analyst)

			_, err := svc.Compare(context.Background(), tt.req)

			var appErr *errx.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, errx.CodeValidation, appErr.Code)
			assert.Equal(t, errx.InvalidBodyMessage, appErr.Message)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.wantField, appErr.Details[0].Field)
			assert.Equal(t, tt.wantRule, appErr.Details[0].Rule)
			assert.Empty(t, analyst.gotSource.ID, "analyst must not be called")
		})
	}
}

func TestServiceCompareAnalystFailure(t *testing.T) {
	boom := errors.New("upstream 503")
	svc := NewService(&fakeAnalyst{err: boom})

	_, err := svc.Compare(context.Background(), CompareRequest{Source: testProduct("1"), Target: testProduct("2")})

	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, errx.CodeAI, appErr.Code)
	assert.Equal(t, "Failed to analyze products. Please try again.", appErr.Message)
	assert.ErrorIs(t, err, boom)
}

func TestServiceSafetyAudit(t *testing.T) {
	analyst := &fakeAnalyst{report: "## Overall Assessment\nGentle."}
	svc := NewService(analyst)

	got, err := svc.SafetyAudit(context.Background(), SafetyAuditRequest{Ingredients: []string{"Water", "Retinol"}})

	require.NoError(t, err)
	assert.Equal(t, "## Overall Assessment\nGentle.", got.Report)
	assert.Equal(t, []string{"Water", "Retinol"}, analyst.gotIngredients)
}

func TestServiceSafetyAuditValidation(t *testing.T) {
	tooMany := make([]string, MaxAuditIngredients+1)
	for i := range tooMany {
		tooMany[i] = "Water"
	}

	tests := []struct {
		name        string
		ingredients []string
		wantRule    string
	}{
		{name: "missing", ingredients: nil, wantRule: "required"},
		{name: "empty", ingredients: []string{}, wantRule: "min"},
		{name: "too many", ingredients: tooMany, wantRule: "max"},
		{name: "blank entry", ingredients: []string{"Water", ""}, wantRule: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeAnalyst{report: "ok"})

			_, err := svc.SafetyAudit(context.Background(), SafetyAuditRequest{Ingredients: tt.ingredients})

			var appErr *errx.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errx.CodeValidation, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.wantRule, appErr.Details[0].Rule)
		})
	}
}

func TestServiceSafetyAuditAnalystFailure(t *testing.T) {
	svc := NewService(&fakeAnalyst{err: errors.New("quota")})

	_, err := svc.SafetyAudit(context.Background(), SafetyAuditRequest{Ingredients: []string{"Water"}})

	assert.True(t, errx.HasCode(err, errx.CodeAI))
	assert.Equal(t, errx.SafetyFailedMessage, errx.From(err).Message)
}

func TestLocalClient(t *testing.T) {
	analyst := &fakeAnalyst{analysis: testAnalysis(), report: "report"}
	client := NewLocalClient(NewService(analyst))
	ctx := context.Background()

	got, err := client.Compare(ctx, *testProduct("1"), *testProduct("2"))
	require.NoError(t, err)
	assert.Equal(t, model.VerdictFairPrice, got.Verdict)

	report, err := client.SafetyReport(ctx, []string{"Water"})
	require.NoError(t, err)
	assert.Equal(t, "report", report)

	_, err = client.SafetyReport(ctx, nil)
	assert.True(t, errx.HasCode(err, errx.CodeValidation))
}
