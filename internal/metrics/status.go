package metrics

// Band labels values up to Upper (inclusive or not).
type Band struct {
	Upper     float64
	Inclusive bool
	Label     string
}

// Thresholds is an ordered band table; values past every band get Else.
type Thresholds struct {
	Bands []Band
	Else  string
}

const (
	NeedsAttention = "Needs attention"
	Good           = "Good"
	Great          = "Great!"
	Ok             = "Ok"
)

var (
	ConversionBands = Thresholds{
		Bands: []Band{
			{Upper: 30, Label: NeedsAttention},
			{Upper: 49, Inclusive: true, Label: Good},
		},
		Else: Great,
	}
	RateBands = Thresholds{
		Bands: []Band{{Upper: 0.10, Label: NeedsAttention}},
		Else:  Ok,
	}
)

// Classify returns the label of the first band containing v. NaN matches no
// band and falls through to Else.
func Classify(v float64, t Thresholds) string {
	for _, b := range t.Bands {
		if v < b.Upper || (b.Inclusive && v == b.Upper) {
			return b.Label
		}
	}
	return t.Else
}

func ConversionStatus(conversions float64) string { return Classify(conversions, ConversionBands) }
func RateStatus(rate float64) string               { return Classify(rate, RateBands) }
