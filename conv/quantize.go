package conv

import fixdsp "github.com/streamdsp/go-fixdsp"

// QuantizeStereoIR converts a real-valued two-column impulse response to
// the fixed-point rows a StereoMAC consumes, applying the same
// conversion-error check as single-channel tap quantization.
func QuantizeStereoIR(ir [][2]float64, format fixdsp.Format) ([][2]int64, error) {
	main := make([]float64, len(ir))
	bleed := make([]float64, len(ir))
	for i, row := range ir {
		main[i] = row[0]
		bleed[i] = row[1]
	}
	mainFP, err := format.QuantizeTaps(main)
	if err != nil {
		return nil, err
	}
	bleedFP, err := format.QuantizeTaps(bleed)
	if err != nil {
		return nil, err
	}
	out := make([][2]int64, len(ir))
	for i := range out {
		out[i] = [2]int64{mainFP[i], bleedFP[i]}
	}
	return out, nil
}
