package model

import (
	"fmt"
	"math"
	"strings"
)

// Verdict is the closed set of price/value judgments returned by a comparison.
type Verdict string

const (
	VerdictExcellentValue Verdict = "Excellent Value"
	VerdictPremiumChoice  Verdict = "Premium Choice"
	VerdictFairPrice      Verdict = "Fair Price"
	VerdictOverpriced     Verdict = "Overpriced"
)

// Verdicts lists every valid verdict in schema order.
var Verdicts = []Verdict{VerdictExcellentValue, VerdictPremiumChoice, VerdictFairPrice, VerdictOverpriced}

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	for _, known := range Verdicts {
		if v == known {
			return true
		}
	}
	return false
}

type KeyIngredient struct {
	Name        string `json:"name"`
	Benefit     string `json:"benefit"`
	IsKeyActive bool   `json:"isKeyActive"`
}

// AIAnalysis is the structured result of comparing two products.
type AIAnalysis struct {
	MatchScore     float64         `json:"matchScore"`
	Summary        string          `json:"summary"`
	KeyIngredients []KeyIngredient `json:"keyIngredients"`
	PriceAnalysis  string          `json:"priceAnalysis"`
	Verdict        Verdict         `json:"verdict"`
}

// Validate checks the invariants the response schema promises.
func (a *AIAnalysis) Validate() error {
	if a == nil {
		return fmt.Errorf("analysis is nil")
	}
	if math.IsNaN(a.MatchScore) || a.MatchScore < 0 || a.MatchScore > 100 {
		return fmt.Errorf("matchScore %v out of range [0,100]", a.MatchScore)
	}
	if strings.TrimSpace(a.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	if strings.TrimSpace(a.PriceAnalysis) == "" {
		return fmt.Errorf("priceAnalysis is empty")
	}
	if !a.Verdict.Valid() {
		return fmt.Errorf("unknown verdict %q", a.Verdict)
	}
	for i, k := range a.KeyIngredients {
		if strings.TrimSpace(k.Name) == "" {
			return fmt.Errorf("keyIngredients[%d] has no name", i)
		}
	}
	return nil
}

// SafetyReport is the markdown audit of an ingredient list.
type SafetyReport struct {
	Report string `json:"report"`
}
