// Package chart builds the per-account monthly users/conversions chart: two
// independently ranged value axes over one month axis, every point labeled
// with its value.
package chart

import (
	"math"

	"github.com/AngelCh415/GA4_REPORT/internal/models"
)

type Axis int

const (
	Left Axis = iota
	Right
)

type Point struct {
	X     string  `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Series is one line with markers, drawn against its own axis range.
type Series struct {
	Name   string  `json:"name"`
	Axis   Axis    `json:"axis"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Spec is a renderable chart for a single account.
type Spec struct {
	Account string   `json:"account"`
	Title   string   `json:"title"`
	XLabel  string   `json:"x_label"`
	Months  []string `json:"months"`
	Series  []Series `json:"series"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
}

// Opt is a functional option type for Spec.
type Opt func(*Spec)

// Title returns an Opt that sets the chart title.
func Title(title string) Opt {
	return func(s *Spec) { s.Title = title }
}

// Size returns an Opt that sets the rendered size in pixels.
func Size(width, height int) Opt {
	return func(s *Spec) {
		if width > 0 && height > 0 {
			s.Width, s.Height = width, height
		}
	}
}

const (
	usersColor       = "#1f77b4"
	conversionsColor = "#d62728"
)

// Render builds the chart of one account from the monthly summary, keeping
// the summary's month order. An unknown account yields a chart with no points.
func Render(summary models.MonthlySummary, account string, opts ...Opt) Spec {
	s := Spec{
		Account: account,
		Title:   "Monthly Statistics for " + account,
		XLabel:  "Month",
		Width:   1000,
		Height:  600,
	}
	users := Series{Name: "Users", Axis: Left, Color: usersColor}
	convs := Series{Name: "Conversions", Axis: Right, Color: conversionsColor}
	for _, r := range summary {
		if r.AccountName != account {
			continue
		}
		m := r.Month.String()
		s.Months = append(s.Months, m)
		users.Points = append(users.Points, Point{X: m, Y: r.Users, Label: models.FormatCount(r.Users)})
		convs.Points = append(convs.Points, Point{X: m, Y: r.Conversions, Label: models.FormatCount(r.Conversions)})
	}
	users.Min, users.Max = autoRange(users.Points)
	convs.Min, convs.Max = autoRange(convs.Points)
	s.Series = []Series{users, convs}

	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RenderAll returns one chart per account in order of first appearance.
func RenderAll(summary models.MonthlySummary, opts ...Opt) []Spec {
	accounts := summary.Accounts()
	out := make([]Spec, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, Render(summary, a, opts...))
	}
	return out
}

// autoRange pads the finite data range by 5% on each side. Flat or empty
// series get a unit-wide range around their value.
func autoRange(ps []Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range ps {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		lo = math.Min(lo, p.Y)
		hi = math.Max(hi, p.Y)
	}
	switch {
	case lo > hi:
		return 0, 1
	case lo == hi:
		d := math.Max(math.Abs(lo)*0.05, 0.5)
		return lo - d, hi + d
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}
