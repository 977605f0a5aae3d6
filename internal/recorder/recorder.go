package recorder

import (
	"context"
	"errors"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// Recorder persists ticker results and industry aggregates.
type Recorder interface {
	SaveTicker(ctx context.Context, t *model.TickerResult) error
	// BulkSaveTickers writes all rows in one transaction. An empty slice is a no-op.
	BulkSaveTickers(ctx context.Context, tickers []model.TickerResult) error
	GetAllTickers(ctx context.Context) ([]model.TickerResult, error)
	// GetTickerBySymbol returns the most recently stored row for symbol.
	GetTickerBySymbol(ctx context.Context, symbol string) (*model.TickerResult, error)

	// SaveOrUpdateIndustryAggregate inserts the aggregate, or overwrites the
	// metrics of the existing row with the same industry while keeping its
	// id and creation time.
	SaveOrUpdateIndustryAggregate(ctx context.Context, agg *model.IndustryAggregate) error
	GetAllIndustryAggregates(ctx context.Context) ([]model.IndustryAggregate, error)
	GetIndustryAggregateByName(ctx context.Context, industry string) (*model.IndustryAggregate, error)

	Close() error
}
