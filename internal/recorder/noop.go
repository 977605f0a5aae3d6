package recorder

import (
	"context"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// NoopRecorder discards writes and stores nothing. Used for dry runs.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SaveTicker(_ context.Context, _ *model.TickerResult) error        { return nil }
func (n *NoopRecorder) BulkSaveTickers(_ context.Context, _ []model.TickerResult) error { return nil }
func (n *NoopRecorder) GetAllTickers(_ context.Context) ([]model.TickerResult, error)  { return nil, nil }
func (n *NoopRecorder) GetTickerBySymbol(_ context.Context, _ string) (*model.TickerResult, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) SaveOrUpdateIndustryAggregate(_ context.Context, _ *model.IndustryAggregate) error {
	return nil
}
func (n *NoopRecorder) GetAllIndustryAggregates(_ context.Context) ([]model.IndustryAggregate, error) {
	return nil, nil
}
func (n *NoopRecorder) GetIndustryAggregateByName(_ context.Context, _ string) (*model.IndustryAggregate, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) Close() error { return nil }

var _ Recorder = (*NoopRecorder)(nil)
