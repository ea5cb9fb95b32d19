package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

var (
	ErrEmptyInput   = errors.New("empty csv input")
	ErrBadDate      = errors.New("unparseable date")
	ErrMalformedRow = errors.New("malformed csv row")
)

// Windsor AI exports name some GA4 fields differently.
var aliases = map[string]string{
	"key_events":          models.ColConversions,
	"user_key_event_rate": models.ColUserConversionRate,
	"first_user_medium":   models.ColMedium,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"20060102",
}

// Load parses an analytics CSV export. Only the date column is validated;
// other cells that are empty or not numbers become missing values (NaN).
func Load(r io.Reader) (models.Dataset, error) {
	dec := csv.NewReader(r)
	dec.FieldsPerRecord = -1
	dec.TrimLeadingSpace = true

	header, err := dec.Read()
	if err == io.EOF {
		return models.Dataset{}, ErrEmptyInput
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	cols := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := normHeader(h)
		if _, dup := idx[name]; dup {
			continue
		}
		idx[name] = i
		cols[name] = struct{}{}
	}
	if _, ok := idx[models.ColDate]; !ok {
		return models.Dataset{}, fmt.Errorf("%w: %s", models.ErrMissingColumn, models.ColDate)
	}

	ds := models.Dataset{Columns: cols}
	for row := 1; ; row++ {
		rec, err := dec.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Dataset{}, fmt.Errorf("row %d: %w", row, err)
		}
		if len(rec) > len(header) {
			return models.Dataset{}, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrMalformedRow, row, len(rec), len(header))
		}
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		d, err := parseDate(cell(models.ColDate))
		if err != nil {
			return models.Dataset{}, fmt.Errorf("row %d: %w", row, err)
		}
		ds.Records = append(ds.Records, models.Record{
			AccountName:        cell(models.ColAccountName),
			Date:               d,
			Medium:             cell(models.ColMedium),
			PagePath:           cell(models.ColPagePath),
			Conversions:        parseNum(cell(models.ColConversions)),
			UserConversionRate: parseNum(cell(models.ColUserConversionRate)),
			Users:              parseNum(cell(models.ColUsers)),
		})
	}
	return ds, nil
}

func normHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	if a, ok := aliases[h]; ok {
		return a
	}
	return h
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// parseNum returns NaN for missing or non-numeric cells. Infinities count as
// missing too.
func parseNum(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
