package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// basic safety limits to avoid pathological model output
const (
	maxContentLen = 64 * 1024
	maxErrSnippet = 200
)

// ParseAnalysis decodes the model's JSON answer into an AIAnalysis and checks its invariants.
// A markdown code fence around the JSON is tolerated.
func ParseAnalysis(content string) (analysis *model.AIAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "analysis_parser").Msgf("panic recovered: %v", r)
			err = errx.Internal(fmt.Errorf("analysis parser panic"))
			analysis = nil
		}
	}()

	if len(content) > maxContentLen {
		return nil, fmt.Errorf("analysis too large: %d bytes", len(content))
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("analysis is not valid utf8")
	}

	body := stripFence(strings.TrimSpace(content))
	if body == "" {
		return nil, fmt.Errorf("analysis is empty")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var out model.AIAnalysis
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode analysis %q: %w", safeSnippet(body), err)
	}
	if out.KeyIngredients == nil {
		out.KeyIngredients = []model.KeyIngredient{}
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis: %w", err)
	}
	return &out, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func safeSnippet(s string) string {
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet] + "..."
}
