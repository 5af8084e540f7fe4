package series

// Sample is a single indicator observation. Positions before an indicator's
// warm-up period carry Defined=false instead of a sentinel value, so a
// consumer can never mistake an unseeded slot for a real zero.
type Sample struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Of wraps a value as a defined sample.
func Of(v float64) Sample {
	return Sample{Value: v, Defined: true}
}

// Or returns the sample value, or fallback when the sample is undefined.
func (s Sample) Or(fallback float64) float64 {
	if !s.Defined {
		return fallback
	}
	return s.Value
}

// Series is a sequence of samples aligned index-for-index with the price
// series it was computed from.
type Series []Sample

// Undefined returns a series of n undefined samples.
func Undefined(n int) Series {
	return make(Series, n)
}

// FromValues wraps raw values as fully defined samples.
func FromValues(values []float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Of(v)
	}
	return s
}

// At returns the sample at index i, or an undefined sample when i is out of
// range.
func (s Series) At(i int) Sample {
	if i < 0 || i >= len(s) {
		return Sample{}
	}
	return s[i]
}

// Last returns the final sample, or an undefined sample for an empty series.
func (s Series) Last() Sample {
	return s.At(len(s) - 1)
}

// DefinedValues returns the values of all defined samples, in order.
func (s Series) DefinedValues() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Defined {
			out = append(out, v.Value)
		}
	}
	return out
}
