package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

func TestAggregateSumsPerAccountMonth(t *testing.T) {
	ds := dataset(
		models.Record{AccountName: "A", Date: day("2024-01-05"), Users: 40, Conversions: 10},
		models.Record{AccountName: "A", Date: day("2024-01-20"), Users: 20, Conversions: 25},
	)
	got, err := Aggregate(ds)
	if err != nil {
		t.Fatal(err)
	}
	want := models.MonthlySummary{{
		AccountName:          "A",
		Month:                month("2024-01"),
		Users:                60,
		Conversions:          35,
		ConversionStatus:     Good,
		ConversionRate:       models.Ratio(35.0 / 60.0),
		ConversionRateStatus: Ok,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateZeroUsers(t *testing.T) {
	got, err := Aggregate(dataset(models.Record{AccountName: "A", Date: day("2024-02-01")}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	r := got[0]
	if !math.IsNaN(float64(r.ConversionRate)) {
		t.Fatalf("expected NaN rate, got %v", r.ConversionRate)
	}
	if r.ConversionStatus != NeedsAttention {
		t.Fatalf("conversion status = %q", r.ConversionStatus)
	}
	if r.ConversionRateStatus != Ok {
		t.Fatalf("rate status = %q", r.ConversionRateStatus)
	}
}

func TestAggregateConversionsWithoutUsersIsInf(t *testing.T) {
	got, err := Aggregate(dataset(models.Record{AccountName: "A", Date: day("2024-02-01"), Conversions: 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(float64(got[0].ConversionRate), 1) {
		t.Fatalf("expected +Inf rate, got %v", got[0].ConversionRate)
	}
}

func TestAggregateOrderAndMissingValues(t *testing.T) {
	ds := dataset(
		models.Record{AccountName: "B", Date: day("2024-03-01"), Users: 1, Conversions: 1},
		models.Record{AccountName: "A", Date: day("2024-02-01"), Users: 2, Conversions: math.NaN()},
		models.Record{AccountName: "A", Date: day("2023-12-31"), Users: math.NaN(), Conversions: 4},
		models.Record{AccountName: "", Date: day("2024-02-01"), Users: 100, Conversions: 100},
		models.Record{AccountName: "A", Date: day("2024-02-28"), Users: 3, Conversions: 2},
	)
	got, err := Aggregate(ds)
	if err != nil {
		t.Fatal(err)
	}
	type key struct {
		Account string
		Month   string
		Users   float64
		Conv    float64
	}
	var keys []key
	for _, r := range got {
		keys = append(keys, key{r.AccountName, r.Month.String(), r.Users, r.Conversions})
	}
	want := []key{
		{"A", "2023-12", 0, 4},
		{"A", "2024-02", 5, 2},
		{"B", "2024-03", 1, 1},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got, err := Aggregate(dataset())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil summary, got %#v", got)
	}
}

func TestAggregateMissingColumn(t *testing.T) {
	ds := datasetWith([]string{models.ColAccountName, models.ColDate, models.ColUsers})
	_, err := Aggregate(ds)
	if !errors.Is(err, models.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func genRecords(t *rapid.T) []models.Record {
	return rapid.SliceOfN(rapid.Custom(func(t *rapid.T) models.Record {
		return models.Record{
			AccountName:        rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "account"),
			Date:               day("2024-01-01").AddDate(0, 0, rapid.IntRange(0, 120).Draw(t, "day")),
			PagePath:           rapid.SampledFrom([]string{"/", "/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h", "/i", "/j", "/k", "/l"}).Draw(t, "page"),
			Users:              float64(rapid.IntRange(0, 500).Draw(t, "users")),
			Conversions:        float64(rapid.IntRange(0, 80).Draw(t, "conversions")),
			UserConversionRate: rapid.Float64Range(0, 1).Draw(t, "rate"),
		}
	}), 0, 200).Draw(t, "records")
}

func TestAggregateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		recs := genRecords(t)
		got, err := Aggregate(dataset(recs...))
		if err != nil {
			t.Fatal(err)
		}

		users := map[monthKey]float64{}
		for _, r := range recs {
			users[monthKey{r.AccountName, models.MonthOf(r.Date)}] += r.Users
		}
		if len(got) != len(users) {
			t.Fatalf("got %d rows for %d keys", len(got), len(users))
		}
		for i, row := range got {
			k := monthKey{row.AccountName, row.Month}
			if row.Users != users[k] {
				t.Fatalf("%v: users %v, raw sum %v", k, row.Users, users[k])
			}
			if want := ConversionStatus(row.Conversions); row.ConversionStatus != want {
				t.Fatalf("%v: status %q for %v conversions", k, row.ConversionStatus, row.Conversions)
			}
			switch row.ConversionStatus {
			case NeedsAttention, Good, Great:
			default:
				t.Fatalf("unexpected status %q", row.ConversionStatus)
			}
			if i > 0 && !lessMonthKey(monthKey{got[i-1].AccountName, got[i-1].Month}, k) {
				t.Fatalf("rows out of order at %d", i)
			}
		}
	})
}
