package report

import (
	"fmt"

	"github.com/AngelCh415/GA4_REPORT/internal/chart"
	"github.com/AngelCh415/GA4_REPORT/internal/metrics"
	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

// Report is everything derived from one uploaded file.
type Report struct {
	Rows     int
	Monthly  models.MonthlySummary
	TopPages models.TopPageTable
	Charts   []chart.Spec
}

// Build runs the monthly rollup, the top page ranking and the per-account
// charts. Any failure aborts the whole report.
func Build(ds models.Dataset, opts ...chart.Opt) (*Report, error) {
	monthly, err := metrics.Aggregate(ds)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	top, err := metrics.RankTopPages(ds)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	return &Report{
		Rows:     len(ds.Records),
		Monthly:  monthly,
		TopPages: top,
		Charts:   chart.RenderAll(monthly, opts...),
	}, nil
}

// Chart returns the chart of the given account, if present.
func (r *Report) Chart(account string) (chart.Spec, bool) {
	for _, c := range r.Charts {
		if c.Account == account {
			return c, true
		}
	}
	return chart.Spec{}, false
}
