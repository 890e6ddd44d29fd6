// Package pipeline orchestrates one statement analysis end to end: encode
// the document, run the primary model call, append best-effort insights,
// and persist the result to the user's history. A four-state machine
// (Idle/Analyzing/Success/Error) gates submission; one analysis is in
// flight at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/malawibank/analyzer/internal/document"
	"github.com/malawibank/analyzer/internal/domain"
)

// State is the lifecycle of an analysis request.
type State string

const (
	StateIdle      State = "IDLE"
	StateAnalyzing State = "ANALYZING"
	StateSuccess   State = "SUCCESS"
	StateError     State = "ERROR"
)

// ErrBusy is returned when a submission arrives while another analysis is
// still in flight.
var ErrBusy = errors.New("an analysis is already in progress")

// Analyzer runs the primary structured-output model call.
type Analyzer interface {
	Analyze(ctx context.Context, doc *document.Inline) (*domain.AnalysisResult, error)
}

// Augmenter appends market commentary. It cannot fail: implementations
// return fallback content instead of an error.
type Augmenter interface {
	Fetch(ctx context.Context, analysis *domain.AnalysisResult) domain.InvestmentInsight
}

// HistoryStore receives the completed item.
type HistoryStore interface {
	Prepend(userID string, item domain.HistoryItem) error
}

// Archiver stores the raw uploaded bytes out of band. Optional; failures
// never affect the run.
type Archiver interface {
	Archive(ctx context.Context, fileName, mimeType string, data []byte) (string, error)
}

// Sink records a per-analysis summary row for reporting. Optional; failures
// never affect the run.
type Sink interface {
	Record(ctx context.Context, userID string, item *domain.HistoryItem) error
}

// Orchestrator drives the two-stage pipeline and owns the state machine.
type Orchestrator struct {
	analyzer  Analyzer
	augmenter Augmenter
	history   HistoryStore
	archiver  Archiver // nil disables archival
	sink      Sink     // nil disables analytics
	log       zerolog.Logger

	mu      sync.Mutex
	state   State
	lastErr string

	newID func() string
	now   func() time.Time
}

// New creates an Orchestrator in the Idle state. archiver and sink may be
// nil.
func New(analyzer Analyzer, augmenter Augmenter, history HistoryStore, archiver Archiver, sink Sink, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		analyzer:  analyzer,
		augmenter: augmenter,
		history:   history,
		archiver:  archiver,
		sink:      sink,
		log:       log,
		state:     StateIdle,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError returns the message of the most recent failed run, empty
// otherwise.
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Reset returns the machine to Idle from Success or Error. Resetting while
// Analyzing is refused.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateAnalyzing {
		return ErrBusy
	}
	o.state = StateIdle
	o.lastErr = ""
	return nil
}

// Analyze runs the full pipeline for one uploaded statement. On success the
// machine lands in Success and the new HistoryItem is returned; on failure
// it lands in Error with no history mutation. Either way a Reset brings it
// back to Idle.
func (o *Orchestrator) Analyze(ctx context.Context, userID, fileName, mimeType string, data []byte) (*domain.HistoryItem, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}

	st := &runState{
		UserID:   userID,
		FileName: fileName,
		MIMEType: mimeType,
		Data:     data,
	}

	for i, step := range analysisSteps {
		if err := step.Execute(ctx, o, st); err != nil {
			o.fail(err)
			return nil, fmt.Errorf("pipeline step %d (%s): %w", i+1, step.Name(), err)
		}
	}

	// Out-of-band extras; best-effort by design.
	o.archive(ctx, st)
	o.record(ctx, st)

	o.succeed()
	o.log.Info().
		Str("user_id", userID).
		Str("item_id", st.Item.ID).
		Int("score", st.Item.Result.FinancialScore).
		Msg("Analysis completed")
	return st.Item, nil
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateAnalyzing {
		return ErrBusy
	}
	o.state = StateAnalyzing
	o.lastErr = ""
	return nil
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateError
	o.lastErr = err.Error()
}

func (o *Orchestrator) succeed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateSuccess
}

func (o *Orchestrator) archive(ctx context.Context, st *runState) {
	if o.archiver == nil {
		return
	}
	uri, err := o.archiver.Archive(ctx, st.FileName, st.MIMEType, st.Data)
	if err != nil {
		o.log.Warn().Err(err).Str("file", st.FileName).Msg("Statement archival failed")
		return
	}
	o.log.Debug().Str("uri", uri).Msg("Statement archived")
}

func (o *Orchestrator) record(ctx context.Context, st *runState) {
	if o.sink == nil {
		return
	}
	if err := o.sink.Record(ctx, st.UserID, st.Item); err != nil {
		o.log.Warn().Err(err).Str("item_id", st.Item.ID).Msg("Analytics record failed")
	}
}
