package reports

import "fmt"

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType, history HistorySource, usage UsageSource) (Generator, error) {
	switch reportType {
	case ReportTypeHistory:
		return NewHistoryReport(history), nil
	case ReportTypeUsage:
		return NewUsageReport(usage), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
