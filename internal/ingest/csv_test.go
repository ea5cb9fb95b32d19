package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

const windsorExport = `Account Name,Date,First User Medium,Page Path,Key Events,User Key Event Rate,Users
Acme,2024-01-05,organic,/,10,0.25,40
Acme,2024-01-20,organic,/pricing,25,0.5,20
`

func TestLoadNormalizesWindsorHeaders(t *testing.T) {
	ds, err := Load(strings.NewReader(windsorExport))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []string{
		models.ColAccountName, models.ColDate, models.ColMedium, models.ColPagePath,
		models.ColConversions, models.ColUserConversionRate, models.ColUsers,
	} {
		if !ds.Has(c) {
			t.Errorf("missing column %s", c)
		}
	}
	want := []models.Record{
		{AccountName: "Acme", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Medium: "organic", PagePath: "/", Conversions: 10, UserConversionRate: 0.25, Users: 40},
		{AccountName: "Acme", Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Medium: "organic", PagePath: "/pricing", Conversions: 25, UserConversionRate: 0.5, Users: 20},
	}
	if diff := cmp.Diff(want, ds.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDateLayouts(t *testing.T) {
	in := "date\n2024-01-05\n2024-01-05 13:04:05\n2024-01-05T10:00:00Z\n2024/01/05\n20240105\n"
	ds, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(ds.Records))
	}
	for i, r := range ds.Records {
		if got := models.MonthOf(r.Date).String(); got != "2024-01" || r.Date.Day() != 5 {
			t.Errorf("row %d: date %v", i, r.Date)
		}
	}
}

func TestLoadMissingAndMalformedNumbers(t *testing.T) {
	in := "account_name,date,users,conversions,user_conversion_rate\nA,2024-01-01,,abc,inf\nB,2024-01-02,7\n"
	ds, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	a, b := ds.Records[0], ds.Records[1]
	if !math.IsNaN(a.Users) || !math.IsNaN(a.Conversions) || !math.IsNaN(a.UserConversionRate) {
		t.Fatalf("expected NaN fields, got %+v", a)
	}
	if b.Users != 7 || !math.IsNaN(b.Conversions) {
		t.Fatalf("short row: got %+v", b)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrEmptyInput},
		{"no date column", "account_name,users\nA,1\n", models.ErrMissingColumn},
		{"bad date", "account_name,date\nA,2024-01-05\nA,yesterday\n", ErrBadDate},
		{"empty date", "account_name,date\nA,\n", ErrBadDate},
		{"long row", "account_name,date\nA,2024-01-05,extra\n", ErrMalformedRow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(c.in))
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	ds, err := Load(strings.NewReader("account_name,date,users,conversions\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Records) != 0 || !ds.Has(models.ColUsers) {
		t.Fatalf("unexpected dataset %+v", ds)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	ds, err := Load(strings.NewReader("\ufeffdate,users\n2024-01-01,3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Records[0].Users != 3 {
		t.Fatalf("users = %v", ds.Records[0].Users)
	}
}
