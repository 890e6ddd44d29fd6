package analyzer

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/malawibank/analyzer/internal/document"
)

const validReply = `{
  "markdownReport": "### Bank Statement Quick Summary – NBM",
  "inflow": 1500000,
  "outflow": 1200000,
  "categories": [{"name": "Groceries", "value": 400000}],
  "topInflows": [{"date": "2025-01-28", "description": "Salary", "amount": 1500000, "category": "Salary"}],
  "topOutflows": [{"date": "2025-01-30", "description": "School fees", "amount": 500000}],
  "redFlags": ["Betting deposits on 4 days"],
  "financialWisdom": [
    {"book": "Rich Dad Poor Dad", "quote": "q1", "tactic": "t1"},
    {"book": "The Richest Man in Babylon", "quote": "q2", "tactic": "t2"},
    {"book": "The Psychology of Money", "quote": "q3", "tactic": "t3"}
  ],
  "financialScore": 55,
  "financialRank": "Break-Even Battler",
  "scoreFeedback": "Income approximately equals expenses."
}`

// mockGenerator implements generator with a pluggable response.
type mockGenerator struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateContentFunc(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func testDoc(t *testing.T) *document.Inline {
	t.Helper()
	doc, err := document.Encode("statement.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return doc
}

func TestAnalyzeSuccess(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	gen := &mockGenerator{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotConfig = config
			return textResponse(validReply), nil
		},
	}

	svc := NewWithGenerator("gemini-2.5-flash", gen)
	result, err := svc.Analyze(context.Background(), testDoc(t))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.FinancialScore != 55 {
		t.Errorf("FinancialScore = %d, want 55", result.FinancialScore)
	}
	if len(result.FinancialWisdom) != 3 {
		t.Errorf("FinancialWisdom entries = %d, want 3", len(result.FinancialWisdom))
	}
	if result.InvestmentInsights != nil {
		t.Error("InvestmentInsights should be nil before augmentation")
	}
	if gotConfig == nil || gotConfig.ResponseMIMEType != "application/json" {
		t.Error("request must declare JSON-only output")
	}
	if gotConfig.ResponseSchema == nil {
		t.Error("request must carry the response schema")
	}
	if gotConfig.SystemInstruction == nil {
		t.Error("request must carry the system instruction")
	}
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{
			name: "transport error",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return nil, errors.New("rpc failed")
				},
			},
		},
		{
			name: "empty reply",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return textResponse(""), nil
				},
			},
		},
		{
			name: "malformed JSON",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return textResponse("{not valid json"), nil
				},
			},
		},
		{
			name: "schema violation",
			gen: &mockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return textResponse(`{"markdownReport": "r", "inflow": -5}`), nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWithGenerator("gemini-2.5-flash", tt.gen)
			_, err := svc.Analyze(context.Background(), testDoc(t))
			if !errors.Is(err, ErrAnalysisFailed) {
				t.Errorf("Analyze() error = %v, want ErrAnalysisFailed", err)
			}
		})
	}
}

func TestParseAnalysisFencedReply(t *testing.T) {
	fenced := "```json\n" + validReply + "\n```"
	result, err := parseAnalysis(fenced)
	if err != nil {
		t.Fatalf("parseAnalysis(fenced) error = %v", err)
	}
	if result.FinancialRank != "Break-Even Battler" {
		t.Errorf("FinancialRank = %q", result.FinancialRank)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go:\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.in); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
