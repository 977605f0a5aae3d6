package model

// OutcomeKind classifies how processing a single symbol ended.
type OutcomeKind string

const (
	OutcomeProcessed     OutcomeKind = "PROCESSED"
	OutcomeFiltered      OutcomeKind = "FILTERED"
	OutcomeUpstreamError OutcomeKind = "UPSTREAM_ERROR"
	OutcomeFailed        OutcomeKind = "FAILED"
)

// SymbolOutcome is the result of processing one symbol. Result is set only
// when Kind is OutcomeProcessed; Err is set for the two failure kinds.
type SymbolOutcome struct {
	Symbol   string
	Kind     OutcomeKind
	Industry string
	Result   *TickerResult
	Err      error
}

// OK reports whether the outcome carries a ticker result.
func (o SymbolOutcome) OK() bool {
	return o.Kind == OutcomeProcessed && o.Result != nil
}
