package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skintellect/storefront/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubGateway answers through optional hooks and records what it was asked.
type stubGateway struct {
	compare func(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error)
	safety  func(ctx context.Context, ingredients []string) (string, error)
}

func (g *stubGateway) Compare(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error) {
	if g.compare == nil {
		return sampleAnalysis(), nil
	}
	return g.compare(ctx, source, target)
}

func (g *stubGateway) SafetyReport(ctx context.Context, ingredients []string) (string, error) {
	if g.safety == nil {
		return "## Report", nil
	}
	return g.safety(ctx, ingredients)
}

// gatedGateway blocks every call until the test releases it. Calls are keyed by the first
// ingredient of the audited product, or by the source id for comparisons.
type gatedGateway struct {
	mu      sync.Mutex
	started map[string]chan struct{}
	release map[string]chan error
}

func newGatedGateway(keys ...string) *gatedGateway {
	g := &gatedGateway{started: map[string]chan struct{}{}, release: map[string]chan error{}}
	for _, k := range keys {
		g.started[k] = make(chan struct{})
		g.release[k] = make(chan error, 1)
	}
	return g
}

func (g *gatedGateway) wait(ctx context.Context, key string) error {
	g.mu.Lock()
	started, release := g.started[key], g.release[key]
	g.mu.Unlock()
	close(started)
	select {
	case err := <-release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gatedGateway) Compare(ctx context.Context, source, _ model.Product) (*model.AIAnalysis, error) {
	if err := g.wait(ctx, source.ID); err != nil {
		return nil, err
	}
	return sampleAnalysis(), nil
}

func (g *gatedGateway) SafetyReport(ctx context.Context, ingredients []string) (string, error) {
	if err := g.wait(ctx, ingredients[0]); err != nil {
		return "", err
	}
	return "report for " + ingredients[0], nil
}

func sampleAnalysis() *model.AIAnalysis {
	return &model.AIAnalysis{
		MatchScore:     87,
		Summary:        "Very similar hydrating serums.",
		KeyIngredients: []model.KeyIngredient{{Name: "Hyaluronic Acid", Benefit: "Hydration", IsKeyActive: true}},
		PriceAnalysis:  "The dupe costs a fraction of the original.",
		Verdict:        model.VerdictExcellentValue,
	}
}

func product(id string) model.Product {
	return model.Product{ID: id, Brand: "Brand " + id, Name: "Product " + id, Category: "Serum", Price: 10, Ingredients: []string{id + "-ingredient", "Water"}}
}

func TestToggleProductInComparisonRejectsThird(t *testing.T) {
	s := NewComparisonStore(&stubGateway{}, 0)
	a, b, c := product("A"), product("B"), product("C")

	assert.True(t, s.ToggleProductInComparison(a))
	assert.True(t, s.ToggleProductInComparison(b))
	assert.False(t, s.ToggleProductInComparison(c))

	assert.Equal(t, []model.Product{a, b}, s.Selection())
	assert.False(t, s.IsInComparison("C"))
}

func TestComparisonSelection(t *testing.T) {
	s := NewComparisonStore(&stubGateway{}, 0)
	a, b := product("A"), product("B")

	assert.True(t, s.AddToComparison(a))
	assert.False(t, s.AddToComparison(a), "duplicate add")
	assert.Len(t, s.Selection(), 1)

	assert.True(t, s.AddToComparison(b))
	assert.False(t, s.ToggleProductInComparison(a), "toggle of selected removes")
	assert.Equal(t, []model.Product{b}, s.Selection())

	s.RemoveFromComparison("B")
	assert.Empty(t, s.Selection())
}

func TestRunComparisonStoresAnalysis(t *testing.T) {
	ctx := context.Background()
	var gotSource, gotTarget string
	gw := &stubGateway{compare: func(_ context.Context, source, target model.Product) (*model.AIAnalysis, error) {
		gotSource, gotTarget = source.ID, target.ID
		return sampleAnalysis(), nil
	}}
	s := NewComparisonStore(gw, time.Second)

	require.NoError(t, s.RunComparison(ctx, product("A"), product("B")))

	st := s.Snapshot()
	assert.Equal(t, "A", gotSource)
	assert.Equal(t, "B", gotTarget)
	require.NotNil(t, st.Analysis)
	assert.Equal(t, *sampleAnalysis(), *st.Analysis)
	assert.Equal(t, "A", st.SelectedProduct.ID)
	assert.Equal(t, "B", st.ComparisonTarget.ID)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.PendingProductIDs)
}

func TestRunComparisonFailureKeepsPreviousAnalysis(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model unavailable")
	gw := &stubGateway{}
	s := NewComparisonStore(gw, time.Second)
	require.NoError(t, s.RunComparison(ctx, product("A"), product("B")))

	gw.compare = func(context.Context, model.Product, model.Product) (*model.AIAnalysis, error) {
		return nil, boom
	}
	err := s.RunComparison(ctx, product("C"), product("D"))

	require.ErrorIs(t, err, boom)
	st := s.Snapshot()
	assert.Equal(t, sampleAnalysis().Summary, st.Analysis.Summary)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.PendingProductIDs)
}

func TestRunComparisonRejectsConcurrentRun(t *testing.T) {
	ctx := context.Background()
	gw := newGatedGateway("A")
	s := NewComparisonStore(gw, time.Second)

	done := make(chan error, 1)
	go func() { done <- s.RunComparison(ctx, product("A"), product("B")) }()
	<-gw.started["A"]

	st := s.Snapshot()
	assert.True(t, st.IsLoading)
	assert.Equal(t, []string{"A", "B"}, st.PendingProductIDs)

	err := s.RunComparison(ctx, product("A"), product("B"))
	assert.ErrorIs(t, err, ErrComparisonInFlight)

	gw.release["A"] <- nil
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().IsLoading)
}

func TestRunSelectedComparisonNeedsTwoProducts(t *testing.T) {
	s := NewComparisonStore(&stubGateway{}, 0)
	s.AddToComparison(product("A"))

	assert.ErrorIs(t, s.RunSelectedComparison(context.Background()), ErrSelectionIncomplete)

	s.AddToComparison(product("B"))
	require.NoError(t, s.RunSelectedComparison(context.Background()))
	assert.NotNil(t, s.Snapshot().Analysis)
}

func TestRunSafetyAuditFailureClearsPendingAndKeepsReport(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	s := NewComparisonStore(gw, time.Second)
	require.NoError(t, s.RunSafetyAudit(ctx, product("A")))
	before := s.Snapshot()
	require.NotNil(t, before.SafetyReport)

	boom := errors.New("quota exceeded")
	gw.safety = func(context.Context, []string) (string, error) { return "", boom }
	err := s.RunSafetyAudit(ctx, product("B"))

	require.ErrorIs(t, err, boom)
	after := s.Snapshot()
	assert.False(t, s.IsPending("B"))
	assert.Empty(t, after.PendingProductIDs)
	assert.Equal(t, *before.SafetyReport, *after.SafetyReport)
	assert.Equal(t, "A", after.AuditProduct.ID)
}

func TestRunSafetyAuditPassesIngredients(t *testing.T) {
	var got []string
	gw := &stubGateway{safety: func(_ context.Context, ingredients []string) (string, error) {
		got = ingredients
		return "ok", nil
	}}
	s := NewComparisonStore(gw, 0)

	require.NoError(t, s.RunSafetyAudit(context.Background(), product("A")))

	assert.Equal(t, []string{"A-ingredient", "Water"}, got)
	assert.Equal(t, "ok", *s.Snapshot().SafetyReport)
}

func TestConcurrentAuditsCompleteOutOfOrder(t *testing.T) {
	ctx := context.Background()
	gw := newGatedGateway("A-ingredient", "B-ingredient")
	s := NewComparisonStore(gw, time.Second)

	doneA := make(chan error, 1)
	doneB := make(chan error, 1)
	go func() { doneA <- s.RunSafetyAudit(ctx, product("A")) }()
	go func() { doneB <- s.RunSafetyAudit(ctx, product("B")) }()
	<-gw.started["A-ingredient"]
	<-gw.started["B-ingredient"]

	assert.Equal(t, []string{"A", "B"}, s.Snapshot().PendingProductIDs)
	assert.ErrorIs(t, s.RunSafetyAudit(ctx, product("A")), ErrAuditInFlight)

	// B finishes first and only B leaves the pending set
	gw.release["B-ingredient"] <- nil
	require.NoError(t, <-doneB)
	st := s.Snapshot()
	assert.Equal(t, []string{"A"}, st.PendingProductIDs)
	assert.True(t, st.IsLoading)

	gw.release["A-ingredient"] <- errors.New("late failure")
	require.Error(t, <-doneA)
	st = s.Snapshot()
	assert.Empty(t, st.PendingProductIDs)
	assert.False(t, st.IsLoading)
	assert.Equal(t, "report for B-ingredient", *st.SafetyReport)
}

func TestAuditAndComparisonShareProductPending(t *testing.T) {
	ctx := context.Background()
	gw := newGatedGateway("A", "A-ingredient")
	s := NewComparisonStore(gw, time.Second)

	cmpDone := make(chan error, 1)
	auditDone := make(chan error, 1)
	go func() { cmpDone <- s.RunComparison(ctx, product("A"), product("B")) }()
	go func() { auditDone <- s.RunSafetyAudit(ctx, product("A")) }()
	<-gw.started["A"]
	<-gw.started["A-ingredient"]

	gw.release["A-ingredient"] <- nil
	require.NoError(t, <-auditDone)
	// the comparison still holds A
	assert.True(t, s.IsPending("A"))

	gw.release["A"] <- nil
	require.NoError(t, <-cmpDone)
	assert.False(t, s.IsPending("A"))
}

func TestRunTimeoutClearsPending(t *testing.T) {
	gw := &stubGateway{safety: func(ctx context.Context, _ []string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	s := NewComparisonStore(gw, 20*time.Millisecond)

	err := s.RunSafetyAudit(context.Background(), product("A"))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, s.Snapshot().PendingProductIDs)
	assert.False(t, s.Snapshot().IsLoading)
}

func TestCallerCancellationClearsPending(t *testing.T) {
	gw := &stubGateway{compare: func(ctx context.Context, _, _ model.Product) (*model.AIAnalysis, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s := NewComparisonStore(gw, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunComparison(ctx, product("A"), product("B"))

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Snapshot().PendingProductIDs)
	assert.Nil(t, s.Snapshot().Analysis)
}

func TestNilAnalysisIsAnError(t *testing.T) {
	gw := &stubGateway{compare: func(context.Context, model.Product, model.Product) (*model.AIAnalysis, error) {
		return nil, nil
	}}
	s := NewComparisonStore(gw, 0)

	require.Error(t, s.RunComparison(context.Background(), product("A"), product("B")))
	assert.Nil(t, s.Snapshot().Analysis)
}

func TestResetComparisonAndCloseSafetyModal(t *testing.T) {
	ctx := context.Background()
	s := NewComparisonStore(&stubGateway{}, 0)
	s.AddToComparison(product("A"))
	s.AddToComparison(product("B"))
	require.NoError(t, s.RunSelectedComparison(ctx))
	require.NoError(t, s.RunSafetyAudit(ctx, product("C")))

	s.ResetComparison()
	st := s.Snapshot()
	assert.Empty(t, st.Selection)
	assert.Nil(t, st.Analysis)
	assert.Nil(t, st.SelectedProduct)
	assert.Nil(t, st.ComparisonTarget)
	// the audit survives a comparison reset
	require.NotNil(t, st.SafetyReport)

	s.CloseSafetyModal()
	st = s.Snapshot()
	assert.Nil(t, st.SafetyReport)
	assert.Nil(t, st.AuditProduct)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := NewComparisonStore(&stubGateway{}, 0)
	require.NoError(t, s.RunComparison(context.Background(), product("A"), product("B")))

	st := s.Snapshot()
	st.Analysis.KeyIngredients[0].Name = "mutated"
	st.SelectedProduct.Ingredients[0] = "mutated"

	again := s.Snapshot()
	assert.Equal(t, "Hyaluronic Acid", again.Analysis.KeyIngredients[0].Name)
	assert.Equal(t, "A-ingredient", again.SelectedProduct.Ingredients[0])
}

func TestPendingSetCommutes(t *testing.T) {
	p := NewPendingSet()
	p.Acquire("a", "b")
	p.Acquire("a")

	p.Release("a")
	assert.True(t, p.Contains("a"))
	p.Release("b", "a")
	assert.Zero(t, p.Len())

	p.Release("missing")
	assert.Empty(t, p.IDs())
}

func TestPendingSetConcurrentAcquireRelease(t *testing.T) {
	p := NewPendingSet()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := []string{"a", "b", "c"}[i%3]
			p.Acquire(id)
			p.Release(id)
		}()
	}
	wg.Wait()
	assert.Zero(t, p.Len())
}
