package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// UsageReport generates CSV exports of per-provider daily consumption.
type UsageReport struct {
	router UsageSource
}

// NewUsageReport creates a new UsageReport generator.
func NewUsageReport(r UsageSource) *UsageReport {
	return &UsageReport{router: r}
}

// Generate creates a CSV export of the rolling-day usage ledger,
// one row per provider in name order.
func (r *UsageReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"provider", "status", "configured", "requests", "tokens"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	usage := r.router.UsageStats()
	status := r.router.Status()

	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if params.Provider != "" && name != params.Provider {
			continue
		}
		st := status[name]
		u := usage[name]
		row := []string{
			name,
			st.Status,
			strconv.FormatBool(st.Configured),
			strconv.FormatInt(u.Requests, 10),
			strconv.FormatInt(u.Tokens, 10),
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
