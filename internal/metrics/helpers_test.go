package metrics

import (
	"time"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

var allColumns = []string{
	models.ColAccountName, models.ColDate, models.ColMedium, models.ColPagePath,
	models.ColConversions, models.ColUserConversionRate, models.ColUsers,
}

func dataset(recs ...models.Record) models.Dataset {
	return datasetWith(allColumns, recs...)
}

func datasetWith(cols []string, recs ...models.Record) models.Dataset {
	set := map[string]struct{}{}
	for _, c := range cols {
		set[c] = struct{}{}
	}
	return models.Dataset{Columns: set, Records: recs}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func month(s string) models.Month {
	m, err := models.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}
