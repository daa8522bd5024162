package genaiscorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"google.golang.org/genai"
)

// GeminiScorer scores transaction descriptions with a Gemini model. It is the
// optional second classification stage; callers treat any error here as a
// degraded-mode signal, not a failure.
type GeminiScorer struct {
	client *genai.Client
	model  string
}

var _ portssvc.ModelScorer = (*GeminiScorer)(nil)

// NewGeminiScorer creates the scorer. The API key is read by the client from
// GEMINI_API_KEY / GOOGLE_API_KEY per the SDK's own resolution order.
func NewGeminiScorer(ctx context.Context, model string) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiScorer{client: client, model: model}, nil
}

type scoreResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Score asks the model for a single-object JSON verdict and maps it onto the
// expense category set.
func (s *GeminiScorer) Score(ctx context.Context, description string) (domain.Category, float64, error) {
	categories := make([]string, 0, len(domain.ExpenseCategories))
	for _, c := range domain.ExpenseCategories {
		categories = append(categories, string(c))
	}

	prompt := "You are an expense classifier for gig-economy workers.\n" +
		"Classify the following transaction description into exactly one of these categories:\n" +
		strings.Join(categories, ", ") + "\n\n" +
		"Description: " + description + "\n\n" +
		"Respond with a single JSON object and nothing else, no Markdown:\n" +
		`{"category": "<one of the categories>", "confidence": <number between 0 and 1>}`

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return domain.CategoryUnclassified, 0, fmt.Errorf("generate content: %w", err)
	}

	rawText := strings.TrimSpace(resp.Text())
	rawText = strings.TrimPrefix(rawText, "```json")
	rawText = strings.TrimPrefix(rawText, "```")
	rawText = strings.TrimSuffix(rawText, "```")
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return domain.CategoryUnclassified, 0, fmt.Errorf("empty response from model")
	}

	var verdict scoreResponse
	if err := json.Unmarshal([]byte(rawText), &verdict); err != nil {
		return domain.CategoryUnclassified, 0, fmt.Errorf("malformed model verdict %q: %w", rawText, err)
	}

	category := domain.Category(verdict.Category)
	if !domain.IsValidExpenseCategory(category) {
		return domain.CategoryUnclassified, 0, fmt.Errorf("model returned unknown category %q", verdict.Category)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return domain.CategoryUnclassified, 0, fmt.Errorf("model confidence %f out of range", verdict.Confidence)
	}
	return category, verdict.Confidence, nil
}
