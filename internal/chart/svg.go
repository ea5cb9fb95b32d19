package chart

import (
	"html/template"
	"io"
	"math"
	"strconv"
)

const (
	marginLeft   = 90
	marginRight  = 90
	marginTop    = 50
	marginBottom = 60
	yTicks       = 5
)

type svgText struct {
	X, Y   string
	Anchor string
	Text   string
}

type svgLine struct {
	X1, Y1, X2, Y2 string
}

type svgSeries struct {
	Color    string
	Polyline string
	Markers  []svgText // X/Y only
	Labels   []svgText
	Ticks    []svgText
	Title    svgText
	Axis     svgLine
}

type svgData struct {
	Width, Height int
	Title         svgText
	XLabel        svgText
	XAxis         svgLine
	XTicks        []svgText
	Series        []svgSeries
}

var svgTemplate = template.Must(template.New("chart").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" font-family="sans-serif" font-size="12">
<rect width="100%" height="100%" fill="#ffffff"/>
<text x="{{.Title.X}}" y="{{.Title.Y}}" text-anchor="middle" font-size="16">{{.Title.Text}}</text>
<line x1="{{.XAxis.X1}}" y1="{{.XAxis.Y1}}" x2="{{.XAxis.X2}}" y2="{{.XAxis.Y2}}" stroke="#333333"/>
{{- range .XTicks}}
<text x="{{.X}}" y="{{.Y}}" text-anchor="middle">{{.Text}}</text>
{{- end}}
<text x="{{.XLabel.X}}" y="{{.XLabel.Y}}" text-anchor="middle">{{.XLabel.Text}}</text>
{{- range .Series}}
{{- $color := .Color}}
<g class="series">
<line x1="{{.Axis.X1}}" y1="{{.Axis.Y1}}" x2="{{.Axis.X2}}" y2="{{.Axis.Y2}}" stroke="{{$color}}"/>
{{- range .Ticks}}
<text x="{{.X}}" y="{{.Y}}" text-anchor="{{.Anchor}}" fill="{{$color}}">{{.Text}}</text>
{{- end}}
<text x="{{.Title.X}}" y="{{.Title.Y}}" text-anchor="middle" fill="{{$color}}" transform="rotate(-90 {{.Title.X}} {{.Title.Y}})">{{.Title.Text}}</text>
<polyline fill="none" stroke="{{$color}}" stroke-width="2" points="{{.Polyline}}"/>
{{- range .Markers}}
<circle cx="{{.X}}" cy="{{.Y}}" r="4" fill="{{$color}}"/>
{{- end}}
{{- range .Labels}}
<text x="{{.X}}" y="{{.Y}}" text-anchor="middle">{{.Text}}</text>
{{- end}}
</g>
{{- end}}
</svg>
`))

// WriteTo writes the chart as a standalone SVG document.
func (s Spec) WriteTo(w io.Writer) (int64, error) {
	cw := countingWriter{w: w}
	err := svgTemplate.Execute(&cw, s.layout())
	return cw.n, err
}

func (s Spec) layout() svgData {
	width, height := s.Width, s.Height
	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	bottom := float64(height - marginBottom)
	left, right := float64(marginLeft), float64(width-marginRight)

	d := svgData{
		Width:  width,
		Height: height,
		Title:  svgText{X: f(float64(width) / 2), Y: f(marginTop / 2), Text: s.Title},
		XLabel: svgText{X: f(left + plotW/2), Y: f(float64(height) - 15), Text: s.XLabel},
		XAxis:  svgLine{X1: f(left), Y1: f(bottom), X2: f(right), Y2: f(bottom)},
	}

	xs := make([]float64, len(s.Months))
	for i, m := range s.Months {
		xs[i] = left + plotW*xFrac(i, len(s.Months))
		d.XTicks = append(d.XTicks, svgText{X: f(xs[i]), Y: f(bottom + 20), Text: m})
	}

	for _, sr := range s.Series {
		y := func(v float64) float64 {
			return bottom - plotH*(v-sr.Min)/(sr.Max-sr.Min)
		}
		out := svgSeries{Color: sr.Color}
		axisX, tickX, anchor, titleX := left, left-8, "end", left-65
		if sr.Axis == Right {
			axisX, tickX, anchor, titleX = right, right+8, "start", right+65
		}
		out.Axis = svgLine{X1: f(axisX), Y1: f(float64(marginTop)), X2: f(axisX), Y2: f(bottom)}
		out.Title = svgText{X: f(titleX), Y: f(float64(marginTop) + plotH/2), Text: sr.Name}
		for i := 0; i <= yTicks; i++ {
			v := sr.Min + (sr.Max-sr.Min)*float64(i)/yTicks
			out.Ticks = append(out.Ticks, svgText{X: f(tickX), Y: f(y(v) + 4), Anchor: anchor, Text: tickLabel(v)})
		}

		var pts []byte
		for i, p := range sr.Points {
			if i >= len(xs) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
				continue
			}
			px, py := f(xs[i]), f(y(p.Y))
			if len(pts) > 0 {
				pts = append(pts, ' ')
			}
			pts = append(pts, px+","+py...)
			out.Markers = append(out.Markers, svgText{X: px, Y: py})
			out.Labels = append(out.Labels, svgText{X: px, Y: f(y(p.Y) - 10), Text: p.Label})
		}
		out.Polyline = string(pts)
		d.Series = append(d.Series, out)
	}
	return d
}

// xFrac places n categories evenly with a 5% margin on both ends.
func xFrac(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return 0.05 + 0.9*float64(i)/float64(n-1)
}

func tickLabel(v float64) string {
	if math.Abs(v) >= 100 {
		return strconv.FormatFloat(math.Round(v), 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

type countingWriter struct {
	n int64
	w io.Writer
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
