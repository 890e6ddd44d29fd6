package pipeline

import (
	"context"

	"github.com/malawibank/analyzer/internal/document"
	"github.com/malawibank/analyzer/internal/domain"
)

// runState is the shared state threaded through the analysis steps.
type runState struct {
	UserID   string
	FileName string
	MIMEType string
	Data     []byte

	Doc    *document.Inline
	Result *domain.AnalysisResult
	Item   *domain.HistoryItem
}

// step is one stage of the analysis pipeline.
type step interface {
	Name() string
	Execute(ctx context.Context, o *Orchestrator, st *runState) error
}

// analysisSteps is the fixed stage order. Augmentation runs strictly after
// the primary call and only the first four stages can fail the run.
var analysisSteps = []step{
	&encodeStep{},
	&analyzeStep{},
	&augmentStep{},
	&buildItemStep{},
	&saveHistoryStep{},
}

// encodeStep validates the file type and produces the inline payload.
type encodeStep struct{}

func (s *encodeStep) Name() string { return "encode" }

func (s *encodeStep) Execute(ctx context.Context, o *Orchestrator, st *runState) error {
	doc, err := document.Encode(st.FileName, st.MIMEType, st.Data)
	if err != nil {
		return err
	}
	st.Doc = doc
	return nil
}

// analyzeStep performs the primary model round trip.
type analyzeStep struct{}

func (s *analyzeStep) Name() string { return "analyze" }

func (s *analyzeStep) Execute(ctx context.Context, o *Orchestrator, st *runState) error {
	result, err := o.analyzer.Analyze(ctx, st.Doc)
	if err != nil {
		return err
	}
	st.Result = result
	return nil
}

// augmentStep attaches investment insights. The augmenter substitutes
// fallback content on failure, so this step never errors.
type augmentStep struct{}

func (s *augmentStep) Name() string { return "augment" }

func (s *augmentStep) Execute(ctx context.Context, o *Orchestrator, st *runState) error {
	insight := o.augmenter.Fetch(ctx, st.Result)
	st.Result.InvestmentInsights = &insight
	return nil
}

// buildItemStep wraps the result into an immutable history item.
type buildItemStep struct{}

func (s *buildItemStep) Name() string { return "build-item" }

func (s *buildItemStep) Execute(ctx context.Context, o *Orchestrator, st *runState) error {
	st.Item = &domain.HistoryItem{
		ID:        o.newID(),
		Timestamp: o.now(),
		FileName:  st.FileName,
		Result:    *st.Result,
	}
	return nil
}

// saveHistoryStep prepends the item to the user's history list.
type saveHistoryStep struct{}

func (s *saveHistoryStep) Name() string { return "save-history" }

func (s *saveHistoryStep) Execute(ctx context.Context, o *Orchestrator, st *runState) error {
	return o.history.Prepend(st.UserID, *st.Item)
}
