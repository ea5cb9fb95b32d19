package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
	"github.com/AngelCh415/GA4_REPORT/internal/store"
)

// Service answers filtered, paginated reads over the current report.
type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }
func norm(s string) string                      { return strings.ToLower(strings.TrimSpace(s)) }

type filter struct {
	account string
	month   *models.Month
}

func parseFilter(v url.Values) (filter, error) {
	f := filter{account: norm(v.Get("account"))}
	if m := strings.TrimSpace(v.Get("month")); m != "" {
		pm, err := models.ParseMonth(m)
		if err != nil {
			return filter{}, err
		}
		f.month = &pm
	}
	return f, nil
}

func (f filter) match(account string, m models.Month) bool {
	if f.account != "" && norm(account) != f.account {
		return false
	}
	if f.month != nil && *f.month != m {
		return false
	}
	return true
}

func (s *Service) QueryMonthly(v url.Values) (models.MonthlySummary, error) {
	up, err := s.st.Current()
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(v)
	if err != nil {
		return nil, err
	}
	rows := models.MonthlySummary{}
	for _, r := range up.Report.Monthly {
		if f.match(r.AccountName, r.Month) {
			rows = append(rows, r)
		}
	}
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(rows))
	return paginate(rows, limit, offset), nil
}

func (s *Service) QueryTopPages(v url.Values) (models.TopPageTable, error) {
	up, err := s.st.Current()
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(v)
	if err != nil {
		return nil, err
	}
	rows := models.TopPageTable{}
	for _, r := range up.Report.TopPages {
		if f.match(r.AccountName, r.Month) {
			rows = append(rows, r)
		}
	}
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(rows))
	return paginate(rows, limit, offset), nil
}

func (s *Service) Accounts() ([]string, error) {
	up, err := s.st.Current()
	if err != nil {
		return nil, err
	}
	accts := up.Report.Monthly.Accounts()
	if accts == nil {
		accts = []string{}
	}
	return accts, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
