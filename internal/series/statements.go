package series

import (
	"sort"
	"time"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

const (
	incomeStatementPath = "fundamentals.financials.income_statement.data"
	balanceSheetPath    = "fundamentals.financials.balance_sheet_statement.data"
)

// Statement is a periodic financial record that can be ordered by date.
type Statement interface {
	SortDate() time.Time
	IsQuarter() bool
	IsAnnual() bool
}

// Statements is a collection sorted by period end, newest first.
type Statements[T Statement] struct {
	items []T
}

type (
	IncomeStatements = Statements[model.IncomeStatement]
	BalanceSheets    = Statements[model.BalanceSheet]
)

// NewStatements copies and sorts items newest first. Records sharing a date
// keep their input order.
func NewStatements[T Statement](items []T) *Statements[T] {
	sorted := append([]T(nil), items...)
	sortNewestFirst(sorted)
	return &Statements[T]{items: sorted}
}

// Items returns the records, newest first.
func (s *Statements[T]) Items() []T { return s.items }

// Len returns the number of records.
func (s *Statements[T]) Len() int { return len(s.items) }

// Quarters returns all quarterly records, newest first.
func (s *Statements[T]) Quarters() []T {
	var out []T
	for _, it := range s.items {
		if it.IsQuarter() {
			out = append(out, it)
		}
	}
	return out
}

// LatestQuarter returns the newest quarterly record, or nil.
func (s *Statements[T]) LatestQuarter() *T {
	return s.quarterAt(0)
}

// PreviousQuarter returns the second newest quarterly record, or nil.
func (s *Statements[T]) PreviousQuarter() *T {
	return s.quarterAt(1)
}

// LastNQuarters returns up to n quarterly records, newest first.
func (s *Statements[T]) LastNQuarters(n int) []T {
	if n <= 0 {
		return nil
	}
	q := s.Quarters()
	if len(q) > n {
		q = q[:n]
	}
	return q
}

// LatestYear returns the newest fiscal-year record, or nil.
func (s *Statements[T]) LatestYear() *T {
	for i := range s.items {
		if s.items[i].IsAnnual() {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Statements[T]) quarterAt(pos int) *T {
	seen := 0
	for i := range s.items {
		if !s.items[i].IsQuarter() {
			continue
		}
		if seen == pos {
			return &s.items[i]
		}
		seen++
	}
	return nil
}

type sortable interface{ SortDate() time.Time }

func sortNewestFirst[T sortable](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortDate().After(items[j].SortDate())
	})
}

// ParseIncomeStatements normalizes an income statement payload.
func ParseIncomeStatements(raw []byte) (*IncomeStatements, error) {
	items := records(raw, incomeStatementPath)
	out := make([]model.IncomeStatement, 0, len(items))
	for i, item := range items {
		r := fieldReader{series: "income_statement", index: i, item: item}
		head, err := readStatementHead(r)
		if err != nil {
			return nil, err
		}
		st := model.IncomeStatement{
			Symbol:       head.symbol,
			Period:       head.period,
			PeriodEnd:    head.date,
			CalendarYear: head.year,
		}
		if st.Revenue, err = r.optionalFloat("revenue"); err != nil {
			return nil, err
		}
		if st.NetIncome, err = r.optionalFloat("netIncome"); err != nil {
			return nil, err
		}
		if st.EPS, err = r.optionalFloat("eps"); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return NewStatements(out), nil
}

// ParseBalanceSheets normalizes a balance sheet payload.
func ParseBalanceSheets(raw []byte) (*BalanceSheets, error) {
	items := records(raw, balanceSheetPath)
	out := make([]model.BalanceSheet, 0, len(items))
	for i, item := range items {
		r := fieldReader{series: "balance_sheet_statement", index: i, item: item}
		head, err := readStatementHead(r)
		if err != nil {
			return nil, err
		}
		bs := model.BalanceSheet{
			Symbol:       head.symbol,
			Period:       head.period,
			PeriodEnd:    head.date,
			CalendarYear: head.year,
		}
		if bs.TotalAssets, err = r.optionalFloat("totalAssets"); err != nil {
			return nil, err
		}
		if bs.TotalLiabilities, err = r.optionalFloat("totalLiabilities"); err != nil {
			return nil, err
		}
		if bs.TotalDebt, err = r.optionalFloat("totalDebt"); err != nil {
			return nil, err
		}
		if bs.TotalEquity, err = r.optionalFloat("totalEquity"); err != nil {
			return nil, err
		}
		out = append(out, bs)
	}
	return NewStatements(out), nil
}

type statementHead struct {
	symbol string
	period string
	date   time.Time
	year   int
}

func readStatementHead(r fieldReader) (statementHead, error) {
	var (
		h   statementHead
		err error
	)
	if h.symbol, err = r.requiredString("symbol"); err != nil {
		return h, err
	}
	if h.period, err = r.requiredString("period"); err != nil {
		return h, err
	}
	if h.date, err = r.requiredDate("date"); err != nil {
		return h, err
	}
	if h.year, err = r.requiredInt("calendarYear"); err != nil {
		return h, err
	}
	return h, nil
}

