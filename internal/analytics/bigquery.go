// Package analytics streams one summary row per completed analysis into
// BigQuery for reporting. The sink is optional; when unconfigured the
// pipeline simply skips it.
package analytics

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/malawibank/analyzer/internal/domain"
)

const analysesTable = "analyses"

// AnalysisRow is the warehouse shape of one completed analysis.
type AnalysisRow struct {
	AnalysisID     string     `bigquery:"analysis_id"`
	UserID         string     `bigquery:"user_id"`
	Filename       string     `bigquery:"original_filename"`
	AnalyzedDate   civil.Date `bigquery:"analyzed_date"`
	Inflow         float64    `bigquery:"inflow"`
	Outflow        float64    `bigquery:"outflow"`
	FinancialScore int64      `bigquery:"financial_score"`
	FinancialRank  string     `bigquery:"financial_rank"`
	CreatedTS      time.Time  `bigquery:"created_ts"`
}

// BigQuerySink writes and reads analysis summary rows.
type BigQuerySink struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQuerySink connects to the project's dataset.
func NewBigQuerySink(ctx context.Context, projectID, dataset string) (*BigQuerySink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("analytics.NewBigQuerySink: bigquery client: %w", err)
	}
	return &BigQuerySink{client: client, dataset: dataset}, nil
}

// Record streams one summary row for the completed item.
func (s *BigQuerySink) Record(ctx context.Context, userID string, item *domain.HistoryItem) error {
	row := &AnalysisRow{
		AnalysisID:     item.ID,
		UserID:         userID,
		Filename:       item.FileName,
		AnalyzedDate:   civil.DateOf(item.Timestamp),
		Inflow:         item.Result.Inflow,
		Outflow:        item.Result.Outflow,
		FinancialScore: int64(item.Result.FinancialScore),
		FinancialRank:  item.Result.FinancialRank,
		CreatedTS:      item.Timestamp,
	}

	inserter := s.client.Dataset(s.dataset).Table(analysesTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("analytics.Record: inserting row: %w", err)
	}
	return nil
}

// RecentAnalyses returns the user's newest summary rows, most recent first.
func (s *BigQuerySink) RecentAnalyses(ctx context.Context, userID string, limit int) ([]*AnalysisRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			analysis_id, user_id, original_filename, analyzed_date,
			inflow, outflow, financial_score, financial_rank, created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
		LIMIT @limit
	`, s.dataset, analysesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics.RecentAnalyses: running query: %w", err)
	}

	var rows []*AnalysisRow
	for {
		var row AnalysisRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("analytics.RecentAnalyses: reading row: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// Close releases the underlying client.
func (s *BigQuerySink) Close() error {
	return s.client.Close()
}
