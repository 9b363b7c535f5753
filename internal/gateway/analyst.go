package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/skintellect/storefront/internal/gateway/observers"
	"github.com/skintellect/storefront/internal/gateway/parsers"
	"github.com/skintellect/storefront/internal/gateway/prompts"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// Analyst performs the two generative-AI operations behind the gateway.
type Analyst interface {
	CompareProducts(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error)
	AnalyzeIngredientSafety(ctx context.Context, ingredients []string) (string, error)
}

// GeminiConfig holds the configuration for the Gemini analyst.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Compare model.CompareModelConfig
	Safety  model.SafetyModelConfig
}

// GeminiAnalyst answers comparisons with a schema-constrained genai call and safety audits
// with an eino prompt -> chat model chain.
type GeminiAnalyst struct {
	client  *genai.Client
	compare model.CompareModelConfig
	safety  model.SafetyModelConfig
	chain   compose.Runnable[map[string]any, *schema.Message]
}

func NewGeminiAnalyst(ctx context.Context, cfg GeminiConfig) (*GeminiAnalyst, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	safetyModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Safety.Model,
		Temperature: &cfg.Safety.Temperature,
		MaxTokens:   &cfg.Safety.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating safety model")
		return nil, fmt.Errorf("error creating safety model: %w", err)
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(prompts.SafetyTemplate()).
		AppendChatModel(safetyModel)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile safety chain: %w", err)
	}

	logx.Debug().
		Str("compare_model", cfg.Compare.Model).
		Str("safety_model", cfg.Safety.Model).
		Msg("Gemini analyst ready")

	return &GeminiAnalyst{
		client:  client,
		compare: cfg.Compare,
		safety:  cfg.Safety,
		chain:   runnable,
	}, nil
}

// CompareProducts asks the compare model for a JSON answer constrained by analysisSchema.
func (a *GeminiAnalyst) CompareProducts(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error) {
	text, err := prompts.RenderCompare(ctx, source, target)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.compare.Model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		Temperature:      genai.Ptr(a.compare.Temperature),
		MaxOutputTokens:  int32(a.compare.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("generate comparison: %w", err)
	}

	if resp.UsageMetadata != nil {
		logUsage("compare", a.compare.Model, &model.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		})
	}

	return parsers.ParseAnalysis(resp.Text())
}

// AnalyzeIngredientSafety runs the safety chain and returns the markdown report.
func (a *GeminiAnalyst) AnalyzeIngredientSafety(ctx context.Context, ingredients []string) (string, error) {
	out, err := a.chain.Invoke(ctx, prompts.SafetyVariables(ingredients), compose.WithCallbacks(observers.NewCallbacks()))
	if err != nil {
		return "", fmt.Errorf("run safety chain: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("safety chain returned no message")
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		logUsage("safety_audit", a.safety.Model, &model.TokenUsage{
			PromptTokens:     out.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: out.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      out.ResponseMeta.Usage.TotalTokens,
		})
	}

	report := strings.TrimSpace(out.Content)
	if report == "" {
		return "", fmt.Errorf("safety chain returned an empty report")
	}
	return report, nil
}

// analysisSchema mirrors model.AIAnalysis.
func analysisSchema() *genai.Schema {
	verdicts := make([]string, len(model.Verdicts))
	for i, v := range model.Verdicts {
		verdicts[i] = string(v)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"matchScore": {Type: genai.TypeNumber},
			"summary":    {Type: genai.TypeString},
			"keyIngredients": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"benefit":     {Type: genai.TypeString},
						"isKeyActive": {Type: genai.TypeBoolean},
					},
					Required: []string{"name", "benefit", "isKeyActive"},
				},
			},
			"priceAnalysis": {Type: genai.TypeString},
			"verdict": {
				Type:   genai.TypeString,
				Format: "enum",
				Enum:   verdicts,
			},
		},
		Required: []string{"matchScore", "summary", "keyIngredients", "priceAnalysis", "verdict"},
	}
}

var _ Analyst = (*GeminiAnalyst)(nil)
