// Package fee computes the economics of embedded payloads.
package fee

// Metrics holds derived fee figures. A nil field means the value is unknown:
// either the fee was not reported or the denominator was zero.
type Metrics struct {
	FeeRate     *float64 // sats per vbyte
	CostPerByte *float64 // sats per payload byte
}

// Compute derives fee rate and cost per payload byte. Values are not rounded.
func Compute(fee *int64, vsize int64, payloadLen int) Metrics {
	if fee == nil {
		return Metrics{}
	}
	return Metrics{
		FeeRate:     ratio(*fee, vsize),
		CostPerByte: ratio(*fee, int64(payloadLen)),
	}
}

func ratio(num, den int64) *float64 {
	if den <= 0 {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}
