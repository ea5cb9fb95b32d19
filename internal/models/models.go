package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column names as they appear in the (normalized) CSV header.
const (
	ColAccountName        = "account_name"
	ColDate               = "date"
	ColMedium             = "medium"
	ColPagePath           = "page_path"
	ColConversions        = "conversions"
	ColUserConversionRate = "user_conversion_rate"
	ColUsers              = "users"
)

// ErrMissingColumn marks input lacking a column some stage needs.
var ErrMissingColumn = errors.New("missing required column")

// Record is one row of the analytics export. Numeric fields hold NaN when
// the cell was empty or not a number.
type Record struct {
	AccountName        string
	Date               time.Time
	Medium             string
	PagePath           string
	Conversions        float64
	UserConversionRate float64
	Users              float64
}

// Dataset is the parsed upload: rows in file order plus the header columns.
type Dataset struct {
	Columns map[string]struct{}
	Records []Record
}

func (d Dataset) Has(col string) bool {
	_, ok := d.Columns[col]
	return ok
}

// Require fails with ErrMissingColumn naming the first absent column.
func (d Dataset) Require(cols ...string) error {
	for _, c := range cols {
		if !d.Has(c) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	y, m, _ := t.Date()
	return Month{Year: y, Month: m}
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("bad month %q (YYYY-MM)", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Ratio is a rate that may be non-finite (zero users). encoding/json rejects
// NaN and Inf, so those are written as strings.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(FormatRatio(f))), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

type MonthlyRow struct {
	AccountName          string  `json:"account_name"`
	Month                Month   `json:"month"`
	Users                float64 `json:"users"`
	Conversions          float64 `json:"conversions"`
	ConversionStatus     string  `json:"conversion_status"`
	ConversionRate       Ratio   `json:"conversion_rate"`
	ConversionRateStatus string  `json:"conversion_rate_status"`
}

type TopPageRow struct {
	AccountName          string  `json:"account_name"`
	Month                Month   `json:"month"`
	PagePath             string  `json:"page_path"`
	Users                float64 `json:"users"`
	Conversions          float64 `json:"conversions"`
	ConversionStatus     string  `json:"conversion_status"`
	ConversionRate       Ratio   `json:"conversion_rate"`
	ConversionRateStatus string  `json:"conversion_rate_status"`
}

// MonthlySummary is ordered by account name, then month.
type MonthlySummary []MonthlyRow

var monthlyHeaders = []string{"Account Name", "Month", "Users", "Conversions", "Conversion Status", "Conversion Rate", "Conversion Rate Status"}

func (MonthlySummary) Headers() []string { return append([]string(nil), monthlyHeaders...) }

func (s MonthlySummary) Records() [][]string {
	out := make([][]string, 0, len(s))
	for _, r := range s {
		out = append(out, []string{
			r.AccountName,
			r.Month.String(),
			FormatCount(r.Users),
			FormatCount(r.Conversions),
			r.ConversionStatus,
			FormatRatio(float64(r.ConversionRate)),
			r.ConversionRateStatus,
		})
	}
	return out
}

// Accounts returns the distinct account names in order of first appearance.
func (s MonthlySummary) Accounts() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range s {
		if _, ok := seen[r.AccountName]; ok {
			continue
		}
		seen[r.AccountName] = struct{}{}
		out = append(out, r.AccountName)
	}
	return out
}

// TopPageTable holds at most ten rows per (account, month), users descending.
type TopPageTable []TopPageRow

var topPageHeaders = []string{"Account Name", "Month", "Page Path", "Users", "Conversions", "Conversion Status", "Conversion Rate", "Conversion Rate Status"}

func (TopPageTable) Headers() []string { return append([]string(nil), topPageHeaders...) }

func (t TopPageTable) Records() [][]string {
	out := make([][]string, 0, len(t))
	for _, r := range t {
		out = append(out, []string{
			r.AccountName,
			r.Month.String(),
			r.PagePath,
			FormatCount(r.Users),
			FormatCount(r.Conversions),
			r.ConversionStatus,
			FormatRatio(float64(r.ConversionRate)),
			r.ConversionRateStatus,
		})
	}
	return out
}

func FormatCount(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func FormatRatio(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}
