package domain

import (
	"fmt"

	"github.com/go-playground/validator"
)

var resultValidator = validator.New()

// ValidateResult asserts that a decoded model reply satisfies the
// AnalysisResult invariants: non-negative flows, score in [0,100], a rank
// and feedback present, and exactly three wisdom entries.
func ValidateResult(r *AnalysisResult) error {
	if r == nil {
		return fmt.Errorf("ValidateResult: nil result")
	}
	if err := resultValidator.Struct(r); err != nil {
		return fmt.Errorf("ValidateResult: %w", err)
	}
	if _, ok := BandForScore(r.FinancialScore); !ok {
		return fmt.Errorf("ValidateResult: score %d outside rubric", r.FinancialScore)
	}
	if r.RealityCheck != nil && r.RealityCheck.RunwayDays < 0 {
		return fmt.Errorf("ValidateResult: negative runway days %d", r.RealityCheck.RunwayDays)
	}
	return nil
}
