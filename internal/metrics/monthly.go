package metrics

import (
	"math"
	"sort"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

var monthlyColumns = []string{models.ColAccountName, models.ColDate, models.ColUsers, models.ColConversions}

type monthKey struct {
	account string
	month   models.Month
}

func lessMonthKey(a, b monthKey) bool {
	if a.account != b.account {
		return a.account < b.account
	}
	return a.month.Before(b.month)
}

// Aggregate rolls raw rows up per (account, calendar month). The conversion
// rate is derived from the sums and is non-finite when users is zero.
func Aggregate(ds models.Dataset) (models.MonthlySummary, error) {
	if err := ds.Require(monthlyColumns...); err != nil {
		return nil, err
	}

	groups := map[monthKey]*models.MonthlyRow{}
	for _, r := range ds.Records {
		if r.AccountName == "" {
			continue // sin cuenta no hay grupo
		}
		k := monthKey{account: r.AccountName, month: models.MonthOf(r.Date)}
		g, ok := groups[k]
		if !ok {
			g = &models.MonthlyRow{AccountName: k.account, Month: k.month}
			groups[k] = g
		}
		g.Users = addSkipNaN(g.Users, r.Users)
		g.Conversions = addSkipNaN(g.Conversions, r.Conversions)
	}

	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessMonthKey(keys[i], keys[j]) })

	out := make(models.MonthlySummary, 0, len(keys))
	for _, k := range keys {
		g := *groups[k]
		rate := g.Conversions / g.Users
		g.ConversionStatus = ConversionStatus(g.Conversions)
		g.ConversionRate = models.Ratio(rate)
		g.ConversionRateStatus = RateStatus(rate)
		out = append(out, g)
	}
	return out, nil
}

func addSkipNaN(sum, v float64) float64 {
	if math.IsNaN(v) {
		return sum
	}
	return sum + v
}
