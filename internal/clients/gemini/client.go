// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateStrategy generates a structured investment strategy for a client
// profile. The response is constrained to a JSON schema matching
// models.InvestmentStrategy; allocation percentages are still treated as
// untrusted and normalized downstream.
func (c *Client) GenerateStrategy(ctx context.Context, profile *models.ClientProfile) (*models.InvestmentStrategy, error) {
	c.logger.Debug().Str("model", c.model).Float64("capital", profile.Capital).Msg("Generating strategy")

	contents := genai.Text(buildStrategyPrompt(profile))
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   strategySchema(),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate strategy: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, err
	}

	var strategy models.InvestmentStrategy
	if err := json.Unmarshal([]byte(text), &strategy); err != nil {
		return nil, fmt.Errorf("malformed strategy output: %w", err)
	}
	strategy.CreatedAt = time.Now()

	return &strategy, nil
}

// AnalyzeStock generates an Arabic-language analysis for a catalog asset.
func (c *Client) AnalyzeStock(ctx context.Context, asset *models.Asset) (string, error) {
	c.logger.Debug().Str("model", c.model).Str("ticker", asset.Ticker).Msg("Analyzing stock")

	contents := genai.Text(buildStockAnalysisPrompt(asset))
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}

	return extractTextFromResponse(result)
}

// strategySchema constrains generation output to the InvestmentStrategy shape.
func strategySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   {Type: genai.TypeString},
			"summary": {Type: genai.TypeString},
			"allocations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category":   {Type: genai.TypeString},
						"percentage": {Type: genai.TypeNumber},
						"rationale":  {Type: genai.TypeString},
					},
					Required: []string{"category", "percentage", "rationale"},
				},
			},
			"recommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"ticker":        {Type: genai.TypeString},
						"name":          {Type: genai.TypeString},
						"justification": {Type: genai.TypeString},
					},
					Required: []string{"ticker", "name", "justification"},
				},
			},
			"risk_analysis": {Type: genai.TypeString},
		},
		Required: []string{"title", "summary", "allocations", "recommendations", "risk_analysis"},
	}
}

// buildStrategyPrompt creates the strategy generation prompt.
func buildStrategyPrompt(profile *models.ClientProfile) string {
	var b strings.Builder

	b.WriteString("أنت مستشار استثماري محترف في أسواق الخليج. ")
	b.WriteString("اكتب خطة استثمارية مفصلة باللغة العربية للعميل التالي.\n\n")

	currency := profile.Currency
	if currency == "" {
		currency = models.CurrencySAR
	}
	b.WriteString(fmt.Sprintf("رأس المال: %.2f %s\n", profile.Capital, currency))
	b.WriteString(fmt.Sprintf("مستوى المخاطرة: %s\n", profile.RiskLevel))
	if profile.Goals != "" {
		b.WriteString(fmt.Sprintf("الأهداف: %s\n", profile.Goals))
	}

	if len(profile.Categories) > 0 {
		cats := make([]string, 0, len(profile.Categories))
		for _, c := range profile.Categories {
			cats = append(cats, string(c))
		}
		b.WriteString(fmt.Sprintf("فئات الأصول المفضلة: %s\n", strings.Join(cats, ", ")))
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- allocation percentages MUST sum to exactly 100\n")
	b.WriteString("- category values must be one of: stocks, real_estate, gold, bonds, savings_certificates, other\n")
	b.WriteString("- recommend only instruments listed on GCC exchanges\n")
	b.WriteString("- title, summary, rationale, justification and risk_analysis must be written in Arabic\n")

	return b.String()
}

// buildStockAnalysisPrompt creates the per-ticker analysis prompt.
func buildStockAnalysisPrompt(asset *models.Asset) string {
	var b strings.Builder

	name := asset.NameAr
	if name == "" {
		name = asset.Name
	}

	b.WriteString(fmt.Sprintf("حلل سهم %s (%s) باللغة العربية.\n\n", name, asset.Ticker))
	b.WriteString(fmt.Sprintf("السعر الحالي: %.2f %s\n", asset.Price, asset.Currency))
	b.WriteString(fmt.Sprintf("التغير: %.2f (%.2f%%)\n", asset.Change, asset.ChangePct))
	if asset.Country != "" {
		b.WriteString(fmt.Sprintf("الدولة: %s\n", asset.Country))
	}
	b.WriteString("\nقدم: ملخص حركة السعر، العوامل المؤثرة، المخاطر الرئيسية، ونظرة مستقبلية مختصرة.")

	return b.String()
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
