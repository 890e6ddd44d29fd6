package insights

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"google.golang.org/genai"

	"github.com/malawibank/analyzer/internal/domain"
	"github.com/malawibank/analyzer/internal/logger"
)

type mockGenerator struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateContentFunc(ctx, model, contents, config)
}

func analysisFixture() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Inflow:         1000000,
		Outflow:        700000,
		FinancialScore: 72,
		FinancialRank:  "Asset Builder",
	}
}

func groundedResponse(text string, uris ...string) *genai.GenerateContentResponse {
	chunks := make([]*genai.GroundingChunk, 0, len(uris))
	for _, u := range uris {
		chunks = append(chunks, &genai.GroundingChunk{
			Web: &genai.GroundingChunkWeb{Title: "t-" + u, URI: u},
		})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:           &genai.Content{Parts: []*genai.Part{{Text: text}}},
				GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
			},
		},
	}
}

func TestFetchDeduplicatesSources(t *testing.T) {
	gen := &mockGenerator{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return groundedResponse("## Malawi Market Pulse", "x", "y", "x"), nil
		},
	}

	svc := NewWithGenerator("gemini-2.5-flash", gen, logger.NewWithWriter(io.Discard))
	insight := svc.Fetch(context.Background(), analysisFixture())

	gotURIs := make([]string, 0, len(insight.Sources))
	for _, s := range insight.Sources {
		gotURIs = append(gotURIs, s.URI)
	}
	if want := []string{"x", "y"}; !reflect.DeepEqual(gotURIs, want) {
		t.Errorf("source URIs = %v, want %v", gotURIs, want)
	}
}

func TestFetchEnablesSearchTool(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	gen := &mockGenerator{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotConfig = config
			return groundedResponse("advice"), nil
		},
	}

	svc := NewWithGenerator("gemini-2.5-flash", gen, logger.NewWithWriter(io.Discard))
	svc.Fetch(context.Background(), analysisFixture())

	if gotConfig == nil || len(gotConfig.Tools) != 1 || gotConfig.Tools[0].GoogleSearch == nil {
		t.Error("request must enable the Google Search tool")
	}
	if gotConfig.ResponseSchema != nil {
		t.Error("grounded request must not carry a response schema")
	}
}

func TestFetchFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{
			name: "transport error",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return nil, errors.New("network down")
				},
			},
		},
		{
			name: "empty reply",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return groundedResponse(""), nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWithGenerator("gemini-2.5-flash", tt.gen, logger.NewWithWriter(io.Discard))
			insight := svc.Fetch(context.Background(), analysisFixture())
			if insight.Advice != FallbackAdvice {
				t.Errorf("Advice = %q, want fallback", insight.Advice)
			}
			if len(insight.Sources) != 0 {
				t.Errorf("Sources = %v, want empty", insight.Sources)
			}
		})
	}
}
