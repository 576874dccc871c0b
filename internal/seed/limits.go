package seed

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidLimits is returned by Limits.Validate.
var ErrInvalidLimits = errors.New("invalid seed limits")

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

// Contains reports whether n lies in the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Limits bounds every random choice the generator makes.
type Limits struct {
	StockRows  Range // number of stock rows inserted
	StockCount Range // on-hand count of each stock row
	SaleRows   Range // number of sales inserted
	Amount     Range // sale price amount
	Year       Range
	Month      Range
	Day        Range
	SaleCount  Range // quantity of each sale
}

// DefaultLimits returns the ranges used by the bookdist CLI.
func DefaultLimits() Limits {
	return Limits{
		StockRows:  Range{10, 20},
		StockCount: Range{15, 30},
		SaleRows:   Range{1, 5},
		Amount:     Range{1, 5},
		Year:       Range{2020, 2023},
		Month:      Range{1, 12},
		Day:        Range{1, 20},
		SaleCount:  Range{1, 5},
	}
}

// Validate rejects inverted ranges and values the data model does not allow.
func (l Limits) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"stock rows", l.StockRows},
		{"stock count", l.StockCount},
		{"sale rows", l.SaleRows},
		{"amount", l.Amount},
		{"year", l.Year},
		{"month", l.Month},
		{"day", l.Day},
		{"sale count", l.SaleCount},
	}
	for _, rr := range ranges {
		if rr.r.Min > rr.r.Max {
			return fmt.Errorf("%w: %s range %s is inverted", ErrInvalidLimits, rr.name, rr.r)
		}
	}

	switch {
	case l.StockRows.Min < 0, l.SaleRows.Min < 0:
		return fmt.Errorf("%w: row counts must not be negative", ErrInvalidLimits)
	case l.StockCount.Min < 0:
		return fmt.Errorf("%w: stock count must not be negative", ErrInvalidLimits)
	case l.SaleCount.Min < 1:
		return fmt.Errorf("%w: sale count must be at least 1", ErrInvalidLimits)
	case l.Month.Min < 1 || l.Month.Max > 12:
		return fmt.Errorf("%w: month range %s outside [1, 12]", ErrInvalidLimits, l.Month)
	case l.Day.Min < 1 || l.Day.Max > 31:
		return fmt.Errorf("%w: day range %s outside [1, 31]", ErrInvalidLimits, l.Day)
	}
	return nil
}

// FormatPrice renders a sale price as "<amount> $".
func FormatPrice(amount int) string {
	return strconv.Itoa(amount) + " $"
}

// FormatDate renders a sale date as "Y-M-D" without zero padding.
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%d-%d-%d", year, month, day)
}
