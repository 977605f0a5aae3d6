package series

import (
	"github.com/guregu/null/v6"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

const eodPath = "stockprice.data"

// Prices is a collection of end-of-day bars, newest first.
type Prices struct {
	items []model.EODPrice
}

// NewPrices copies and sorts bars newest first.
func NewPrices(items []model.EODPrice) *Prices {
	sorted := append([]model.EODPrice(nil), items...)
	sortNewestFirst(sorted)
	return &Prices{items: sorted}
}

func (p *Prices) Items() []model.EODPrice { return p.items }
func (p *Prices) Len() int                { return len(p.items) }

// Latest returns the newest bar, or nil.
func (p *Prices) Latest() *model.EODPrice {
	if len(p.items) == 0 {
		return nil
	}
	return &p.items[0]
}

// LatestClose returns the close of the newest bar, null when there is none.
func (p *Prices) LatestClose() null.Float {
	if bar := p.Latest(); bar != nil {
		return bar.Close
	}
	return null.Float{}
}

// ParseEODPrices normalizes an end-of-day payload. The symbol is supplied by
// the caller since bars do not carry it.
func ParseEODPrices(symbol string, raw []byte) (*Prices, error) {
	items := records(raw, eodPath)
	out := make([]model.EODPrice, 0, len(items))
	for i, item := range items {
		r := fieldReader{series: "stockprice", index: i, item: item}
		date, err := r.requiredDate("date")
		if err != nil {
			return nil, err
		}
		bar := model.EODPrice{Symbol: symbol, Date: date}
		for _, fld := range []struct {
			name string
			dst  *null.Float
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		} {
			if *fld.dst, err = r.optionalFloat(fld.name); err != nil {
				return nil, err
			}
		}
		out = append(out, bar)
	}
	return NewPrices(out), nil
}
