package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// HistoryReport generates CSV exports of archived generations.
type HistoryReport struct {
	store HistorySource
}

// NewHistoryReport creates a new HistoryReport generator.
func NewHistoryReport(s HistorySource) *HistoryReport {
	return &HistoryReport{store: s}
}

// Generate creates a CSV export of recent generations, newest first.
func (r *HistoryReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"timestamp", "keywords", "content_type", "framework", "audience", "tone", "provider", "model", "success", "tokens", "content"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	gens, err := r.store.RecentGenerations(ctx, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	for _, g := range gens {
		row := []string{
			g.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			g.Keywords,
			g.ContentType,
			g.Framework,
			g.Audience,
			g.Tone,
			g.Provider,
			g.Model,
			strconv.FormatBool(g.Success),
			strconv.Itoa(g.Tokens),
			g.Content,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush writer: %w", err)
	}

	return buf, nil
}
