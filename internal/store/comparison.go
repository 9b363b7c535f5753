package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// MaxComparison is the number of products a comparison selection can hold.
const MaxComparison = 2

// Gateway is the AI service the comparison store delegates to.
type Gateway interface {
	Compare(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error)
	SafetyReport(ctx context.Context, ingredients []string) (string, error)
}

// ComparisonState is a point-in-time copy of a ComparisonStore.
type ComparisonState struct {
	Selection         []model.Product   `json:"comparisonList"`
	SelectedProduct   *model.Product    `json:"selectedProduct"`
	ComparisonTarget  *model.Product    `json:"comparisonTarget"`
	Analysis          *model.AIAnalysis `json:"analysis"`
	IsLoading         bool              `json:"isLoading"`
	PendingProductIDs []string          `json:"pendingProductIds"`
	AuditProduct      *model.Product    `json:"auditProduct"`
	SafetyReport      *string           `json:"safetyReport"`
}

// ComparisonStore coordinates the two-product selection, the AI comparison run and the
// ingredient safety audits of one shopper. Nothing here is persisted.
type ComparisonStore struct {
	gateway    Gateway
	runTimeout time.Duration
	pending    *PendingSet

	mu           sync.RWMutex
	selection    []model.Product
	selected     *model.Product
	target       *model.Product
	analysis     *model.AIAnalysis
	comparing    bool
	auditing     map[string]bool
	inFlight     int
	auditProduct *model.Product
	safetyReport *string
}

// NewComparisonStore builds a store calling gateway. A positive runTimeout bounds every
// AI call so pending markers cannot outlive a hung request.
func NewComparisonStore(gateway Gateway, runTimeout time.Duration) *ComparisonStore {
	return &ComparisonStore{
		gateway:    gateway,
		runTimeout: runTimeout,
		pending:    NewPendingSet(),
		selection:  []model.Product{},
		auditing:   make(map[string]bool),
	}
}

// AddToComparison appends p unless it is already selected or the selection is full.
// It reports whether p was added.
func (s *ComparisonStore) AddToComparison(p model.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(p)
}

func (s *ComparisonStore) addLocked(p model.Product) bool {
	if s.indexLocked(p.ID) >= 0 || len(s.selection) >= MaxComparison {
		return false
	}
	s.selection = append(s.selection, p)
	return true
}

// RemoveFromComparison drops id from the selection.
func (s *ComparisonStore) RemoveFromComparison(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = slices.DeleteFunc(s.selection, func(p model.Product) bool { return p.ID == id })
}

// ToggleProductInComparison removes p when selected, otherwise adds it if there is room.
// It reports whether p is selected afterwards.
func (s *ComparisonStore) ToggleProductInComparison(p model.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		s.selection = slices.DeleteFunc(s.selection, func(sel model.Product) bool { return sel.ID == p.ID })
		return false
	}
	return s.addLocked(p)
}

func (s *ComparisonStore) IsInComparison(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

// Selection returns the selected products in insertion order.
func (s *ComparisonStore) Selection() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selection)
}

func (s *ComparisonStore) indexLocked(id string) int {
	return slices.IndexFunc(s.selection, func(p model.Product) bool { return p.ID == id })
}

// RunComparison asks the gateway to compare p1 against p2. Both ids are pending for the
// duration of the call. On success the analysis replaces the previous one; on failure the
// previous analysis is kept and the error is returned. Only one comparison may run at a
// time; a concurrent call fails fast with ErrComparisonInFlight.
func (s *ComparisonStore) RunComparison(ctx context.Context, p1, p2 model.Product) error {
	s.mu.Lock()
	if s.comparing {
		s.mu.Unlock()
		return ErrComparisonInFlight
	}
	s.comparing = true
	s.inFlight++
	s.selected, s.target = &p1, &p2
	s.pending.Acquire(p1.ID, p2.ID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending.Release(p1.ID, p2.ID)
		s.comparing = false
		s.inFlight--
		s.mu.Unlock()
	}()

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	analysis, err := s.gateway.Compare(ctx, p1, p2)
	if err == nil && analysis == nil {
		err = fmt.Errorf("gateway returned no analysis")
	}
	if err != nil {
		logx.Warn().Err(err).Str("source_id", p1.ID).Str("target_id", p2.ID).Msg("comparison failed")
		return fmt.Errorf("compare %s with %s: %w", p1.ID, p2.ID, err)
	}

	result := cloneAnalysis(analysis)
	s.mu.Lock()
	s.analysis = result
	s.mu.Unlock()
	return nil
}

// RunSelectedComparison compares the two selected products in selection order.
func (s *ComparisonStore) RunSelectedComparison(ctx context.Context) error {
	sel := s.Selection()
	if len(sel) != MaxComparison {
		return ErrSelectionIncomplete
	}
	return s.RunComparison(ctx, sel[0], sel[1])
}

// RunSafetyAudit requests the ingredient safety report of p. Audits of different products
// may run concurrently; each one clears only its own pending marker. On failure the
// previously stored report is left untouched.
func (s *ComparisonStore) RunSafetyAudit(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	if s.auditing[p.ID] {
		s.mu.Unlock()
		return ErrAuditInFlight
	}
	s.auditing[p.ID] = true
	s.inFlight++
	s.pending.Acquire(p.ID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending.Release(p.ID)
		delete(s.auditing, p.ID)
		s.inFlight--
		s.mu.Unlock()
	}()

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	report, err := s.gateway.SafetyReport(ctx, slices.Clone(p.Ingredients))
	if err != nil {
		logx.Warn().Err(err).Str("product_id", p.ID).Msg("safety audit failed")
		return fmt.Errorf("safety audit of %s: %w", p.ID, err)
	}

	s.mu.Lock()
	s.auditProduct = &p
	s.safetyReport = &report
	s.mu.Unlock()
	return nil
}

// ResetComparison clears the selection and the last comparison.
func (s *ComparisonStore) ResetComparison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = []model.Product{}
	s.selected = nil
	s.target = nil
	s.analysis = nil
}

// CloseSafetyModal clears the last audit only.
func (s *ComparisonStore) CloseSafetyModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditProduct = nil
	s.safetyReport = nil
}

// Busy reports whether a comparison or an audit is running.
func (s *ComparisonStore) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// IsPending reports whether id has AI work in flight.
func (s *ComparisonStore) IsPending(id string) bool {
	return s.pending.Contains(id)
}

// Snapshot copies the current state.
func (s *ComparisonStore) Snapshot() ComparisonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := ComparisonState{
		Selection:         slices.Clone(s.selection),
		SelectedProduct:   cloneProduct(s.selected),
		ComparisonTarget:  cloneProduct(s.target),
		Analysis:          cloneAnalysis(s.analysis),
		IsLoading:         s.inFlight > 0,
		PendingProductIDs: s.pending.IDs(),
		AuditProduct:      cloneProduct(s.auditProduct),
	}
	if s.safetyReport != nil {
		report := *s.safetyReport
		st.SafetyReport = &report
	}
	return st
}

func (s *ComparisonStore) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.runTimeout > 0 {
		return context.WithTimeout(ctx, s.runTimeout)
	}
	return context.WithCancel(ctx)
}

func cloneProduct(p *model.Product) *model.Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Ingredients = slices.Clone(p.Ingredients)
	return &c
}

func cloneAnalysis(a *model.AIAnalysis) *model.AIAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	c.KeyIngredients = slices.Clone(a.KeyIngredients)
	return &c
}
