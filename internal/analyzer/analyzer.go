// Package analyzer builds the primary model request for a bank statement and
// decodes the structured reply. The call either yields a complete, validated
// AnalysisResult or a generic analysis failure; there is no field-level
// repair.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/malawibank/analyzer/internal/document"
	"github.com/malawibank/analyzer/internal/domain"
)

// ErrAnalysisFailed is the single condition surfaced for any pipeline error
// between request construction and reply validation.
var ErrAnalysisFailed = errors.New("failed to analyze the document")

// generator is the slice of the genai client the service needs. Tests supply
// a mock; production wraps client.Models.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// modelsGenerator adapts *genai.Models to the generator interface.
type modelsGenerator struct {
	models *genai.Models
}

func (g *modelsGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.models.GenerateContent(ctx, model, contents, config)
}

// Service issues the primary statement-analysis call.
type Service struct {
	model string
	gen   generator
}

// New creates a Service backed by a real genai client. The API key comes
// from the environment (GEMINI_API_KEY), read by the SDK itself.
func New(ctx context.Context, model string) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer.New: create genai client: %w", err)
	}
	return &Service{model: model, gen: &modelsGenerator{models: client.Models}}, nil
}

// NewWithGenerator wires a custom generator, used by tests.
func NewWithGenerator(model string, gen generator) *Service {
	return &Service{model: model, gen: gen}
}

// Analyze sends the encoded statement to the model and returns the decoded,
// validated result. InvestmentInsights is left nil for the augmenter.
func (s *Service) Analyze(ctx context.Context, doc *document.Inline) (*domain.AnalysisResult, error) {
	raw, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("analyzer.Analyze: %w: %v", ErrAnalysisFailed, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MIMEType,
						Data:     raw,
					},
				},
				{Text: analysisPrompt},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("analyzer.Analyze: %w: generate content: %v", ErrAnalysisFailed, err)
	}

	result, err := parseAnalysis(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("analyzer.Analyze: %w: %v", ErrAnalysisFailed, err)
	}
	return result, nil
}
