package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// EODPrice represents a single end-of-day bar. Any price field may be
// missing in the upstream payload.
type EODPrice struct {
	Symbol string
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Float
}

// SortDate returns the bar date.
func (p EODPrice) SortDate() time.Time { return p.Date }
