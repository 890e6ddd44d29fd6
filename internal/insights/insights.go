// Package insights issues the search-grounded follow-up call that appends
// market commentary to a completed analysis. The stage is best-effort by
// construction: Fetch has no error return, and every failure path yields the
// fixed offline fallback.
package insights

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/malawibank/analyzer/internal/domain"
)

// FallbackAdvice is returned whenever the grounded call fails or comes back
// empty.
const FallbackAdvice = "Offline mode: Stick to the basics. Save at least 20% of income and look for assets that appreciate."

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelsGenerator struct {
	models *genai.Models
}

func (g *modelsGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.models.GenerateContent(ctx, model, contents, config)
}

// Service fetches investment insights for a completed analysis.
type Service struct {
	model string
	gen   generator
	log   zerolog.Logger
}

// New creates a Service backed by a real genai client.
func New(ctx context.Context, model string, log zerolog.Logger) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("insights.New: create genai client: %w", err)
	}
	return &Service{model: model, gen: &modelsGenerator{models: client.Models}, log: log}, nil
}

// NewWithGenerator wires a custom generator, used by tests.
func NewWithGenerator(model string, gen generator, log zerolog.Logger) *Service {
	return &Service{model: model, gen: gen, log: log}
}

// Fetch asks the model, with live web search enabled, for market commentary
// tailored to the user's rank and net cash flow. Citations are de-duplicated
// by URI, first-seen order preserved.
func (s *Service) Fetch(ctx context.Context, analysis *domain.AnalysisResult) domain.InvestmentInsight {
	prompt := fmt.Sprintf(`
Context: User is based in Malawi.
Financial Profile: Rank %q (Score: %d/100).
Recent Net Cash Flow: MWK %.0f.

Task: Using Google Search, find REAL-TIME investment opportunities in Malawi right now.
Search for:
1. Current Reserve Bank of Malawi (RBM) reference rates or inflation rates.
2. Latest performance of Unit Trusts in Malawi (e.g., Old Mutual, Nico Asset Management, Bridgepath).
3. Top performing stocks on the Malawi Stock Exchange (MSE) recently.

Output:
Provide a concise Markdown advice section titled "Malawi Market Pulse".
Based on their rank (%q), suggest 3 specific moves they should make in the Malawian market TODAY to improve their score.
Include specific percentage rates (e.g., "18%% p.a.") if found in search.
`, analysis.FinancialRank, analysis.FinancialScore, analysis.NetFlow(), analysis.FinancialRank)

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	// No response schema: the search tool does not combine with
	// schema-constrained output.
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		s.log.Warn().Err(err).Msg("Investment insights call failed, using fallback")
		return fallback()
	}

	advice := resp.Text()
	if advice == "" {
		s.log.Warn().Msg("Investment insights reply empty, using fallback")
		return fallback()
	}

	return domain.InvestmentInsight{
		Advice:  advice,
		Sources: dedupeSources(extractSources(resp)),
	}
}

func fallback() domain.InvestmentInsight {
	return domain.InvestmentInsight{Advice: FallbackAdvice, Sources: []domain.Source{}}
}

// extractSources pulls web citations out of the grounding metadata.
func extractSources(resp *genai.GenerateContentResponse) []domain.Source {
	var sources []domain.Source
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = "Source"
		}
		sources = append(sources, domain.Source{Title: title, URI: chunk.Web.URI})
	}
	return sources
}

// dedupeSources drops repeated URIs, keeping the first occurrence.
func dedupeSources(in []domain.Source) []domain.Source {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Source, 0, len(in))
	for _, s := range in {
		if seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		out = append(out, s)
	}
	return out
}
