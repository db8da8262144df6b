package reports

import (
	"context"
	"io"

	"github.com/copyspell/copyspell/pkg/router"
	"github.com/copyspell/copyspell/pkg/store"
)

type ReportType string

const (
	ReportTypeHistory ReportType = "history"
	ReportTypeUsage   ReportType = "usage"
)

type ReportParams struct {
	// Limit caps the number of history rows. Zero means the store's
	// retention limit.
	Limit int
	// Provider restricts usage rows to a single provider when set.
	Provider string
}

// HistorySource is the store access a history report needs.
type HistorySource interface {
	RecentGenerations(ctx context.Context, limit int) ([]store.Generation, error)
}

// UsageSource is the router access a usage report needs.
type UsageSource interface {
	UsageStats() map[string]router.Usage
	Status() map[string]router.ProviderStatus
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}
