package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
	"github.com/AngelCh415/GA4_REPORT/internal/report"
	"github.com/AngelCh415/GA4_REPORT/internal/store"
)

func month(s string) models.Month {
	m, err := models.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func seeded() *Service {
	st := store.NewMemoryStore()
	st.Put("test.csv", &report.Report{
		Monthly: models.MonthlySummary{
			{AccountName: "Acme", Month: month("2024-01"), Users: 1},
			{AccountName: "Acme", Month: month("2024-02"), Users: 2},
			{AccountName: "Beta", Month: month("2024-01"), Users: 3},
		},
		TopPages: models.TopPageTable{
			{AccountName: "Acme", Month: month("2024-01"), PagePath: "/a", Users: 5},
			{AccountName: "Acme", Month: month("2024-01"), PagePath: "/b", Users: 4},
			{AccountName: "Beta", Month: month("2024-02"), PagePath: "/c", Users: 1},
		},
	})
	return NewService(st)
}

func users(rows models.MonthlySummary) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r.Users)
	}
	return out
}

func TestQueryMonthly(t *testing.T) {
	s := seeded()
	cases := []struct {
		q    string
		want []float64
	}{
		{"", []float64{1, 2, 3}},
		{"account=%20acme%20", []float64{1, 2}},
		{"month=2024-01", []float64{1, 3}},
		{"account=Acme&month=2024-02", []float64{2}},
		{"limit=1&offset=1", []float64{2}},
		{"offset=10", nil},
	}
	for _, c := range cases {
		v, _ := url.ParseQuery(c.q)
		rows, err := s.QueryMonthly(v)
		if err != nil {
			t.Fatalf("%q: %v", c.q, err)
		}
		if diff := cmp.Diff(c.want, users(rows)); diff != "" {
			t.Errorf("%q (-want +got):\n%s", c.q, diff)
		}
	}
}

func TestQueryTopPages(t *testing.T) {
	rows, err := seeded().QueryTopPages(url.Values{"account": {"acme"}, "limit": {"1"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].PagePath != "/a" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestQueryBadMonth(t *testing.T) {
	if _, err := seeded().QueryMonthly(url.Values{"month": {"January"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestQueryWithoutReport(t *testing.T) {
	s := NewService(store.NewMemoryStore())
	if _, err := s.QueryMonthly(nil); !errors.Is(err, store.ErrNoReport) {
		t.Fatalf("expected ErrNoReport, got %v", err)
	}
	if _, err := s.Accounts(); !errors.Is(err, store.ErrNoReport) {
		t.Fatalf("expected ErrNoReport, got %v", err)
	}
}

func TestAccounts(t *testing.T) {
	accts, err := seeded().Accounts()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Acme", "Beta"}, accts); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
