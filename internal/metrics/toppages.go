package metrics

import (
	"math"
	"sort"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

// TopN is how many pages are kept per (account, month).
const TopN = 10

var topPageColumns = []string{
	models.ColAccountName, models.ColDate, models.ColPagePath,
	models.ColUsers, models.ColConversions, models.ColUserConversionRate,
}

type pageGroup struct {
	row   models.TopPageRow
	rates float64
	n     int
}

// RankTopPages groups rows per (account, month, page path), keeps the TopN
// pages by users in every (account, month) and concatenates the partitions in
// account then month order. The conversion rate is the mean of the per-row
// user_conversion_rate, not recomputed from the sums.
func RankTopPages(ds models.Dataset) (models.TopPageTable, error) {
	if err := ds.Require(topPageColumns...); err != nil {
		return nil, err
	}

	type pageKey struct {
		monthKey
		path string
	}
	groups := map[pageKey]*pageGroup{}
	partitions := map[monthKey][]*pageGroup{}
	for _, r := range ds.Records {
		if r.AccountName == "" || r.PagePath == "" {
			continue
		}
		mk := monthKey{account: r.AccountName, month: models.MonthOf(r.Date)}
		k := pageKey{monthKey: mk, path: r.PagePath}
		g, ok := groups[k]
		if !ok {
			g = &pageGroup{row: models.TopPageRow{AccountName: mk.account, Month: mk.month, PagePath: k.path}}
			groups[k] = g
			partitions[mk] = append(partitions[mk], g)
		}
		g.row.Users = addSkipNaN(g.row.Users, r.Users)
		g.row.Conversions = addSkipNaN(g.row.Conversions, r.Conversions)
		if !math.IsNaN(r.UserConversionRate) {
			g.rates += r.UserConversionRate
			g.n++
		}
	}

	keys := make([]monthKey, 0, len(partitions))
	for k := range partitions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessMonthKey(keys[i], keys[j]) })

	out := make(models.TopPageTable, 0, len(groups))
	for _, k := range keys {
		part := partitions[k]
		// estable: empates conservan el orden de aparición
		sort.SliceStable(part, func(i, j int) bool { return part[i].row.Users > part[j].row.Users })
		if len(part) > TopN {
			part = part[:TopN]
		}
		for _, g := range part {
			rate := math.NaN()
			if g.n > 0 {
				rate = g.rates / float64(g.n)
			}
			row := g.row
			row.ConversionStatus = ConversionStatus(row.Conversions)
			row.ConversionRate = models.Ratio(rate)
			row.ConversionRateStatus = RateStatus(rate)
			out = append(out, row)
		}
	}
	return out, nil
}
