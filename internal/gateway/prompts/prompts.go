package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/skintellect/storefront/internal/model"
)

//go:embed template/compare_prompt.txt
var comparePrompt string

//go:embed template/safety_prompt.txt
var safetyPrompt string

// productVars is the view of a product the compare template reads.
type productVars struct {
	Brand       string
	Name        string
	Price       string
	Size        string
	Category    string
	Ingredients string
}

func toVars(p model.Product) productVars {
	size := p.Size
	if size == "" {
		size = "unknown"
	}
	return productVars{
		Brand:       p.Brand,
		Name:        p.Name,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Size:        size,
		Category:    p.Category,
		Ingredients: strings.Join(p.Ingredients, ", "),
	}
}

func verdictList() string {
	quoted := make([]string, len(model.Verdicts))
	for i, v := range model.Verdicts {
		quoted[i] = strconv.Quote(string(v))
	}
	last := len(quoted) - 1
	return strings.Join(quoted[:last], ", ") + ", or " + quoted[last]
}

// CompareTemplate is the single user message asking for a structured comparison.
func CompareTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.GoTemplate, schema.UserMessage(comparePrompt))
}

// CompareVariables binds source and target to the compare template.
func CompareVariables(source, target model.Product) map[string]any {
	return map[string]any{
		"Source":   toVars(source),
		"Target":   toVars(target),
		"Verdicts": verdictList(),
	}
}

// RenderCompare formats the comparison prompt through the eino prompt component.
func RenderCompare(ctx context.Context, source, target model.Product) (string, error) {
	msgs, err := CompareTemplate().Format(ctx, CompareVariables(source, target))
	if err != nil {
		return "", fmt.Errorf("compare prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("compare prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// SafetyTemplate is the single user message asking for a markdown safety report.
func SafetyTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.GoTemplate, schema.UserMessage(safetyPrompt))
}

// SafetyVariables binds an ingredient list to the safety template.
func SafetyVariables(ingredients []string) map[string]any {
	return map[string]any{"Ingredients": strings.Join(ingredients, ", ")}
}
