// Command analyze-filter prints the magnitude response of a designed
// filter, together with the fixed-point quantization error of its taps.
//
// Usage:
//
//	analyze-filter -rate 48000 -cutoff 4000 -order 32
//	analyze-filter -type halfband -order 19
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter/design"
)

const (
	defaultRate   = 48000
	defaultCutoff = 4000.0
	defaultOrder  = 32
	defaultPoints = 512

	floorDB = -140.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	filterType := flag.String("type", "low", "Filter type: low, high or halfband")
	rate := flag.Int("rate", defaultRate, "Sample rate in Hz")
	cutoff := flag.Float64("cutoff", defaultCutoff, "Cutoff frequency in Hz (ignored for halfband)")
	order := flag.Int("order", defaultOrder, "Filter order (tap count)")
	points := flag.Int("points", defaultPoints, "Frequency resolution of the response")
	bitwidth := flag.Int("bitwidth", 18, "Fixed-point sample width")
	fraction := flag.Int("fraction", 18, "Fixed-point fraction width")
	flag.Parse()

	var (
		taps []float64
		err  error
	)
	switch *filterType {
	case "low":
		taps, err = design.LowPass(*order, *cutoff, float64(*rate))
	case "high":
		taps, err = design.HighPass(*order, *cutoff, float64(*rate))
	case "halfband":
		taps, err = design.HalfBandTaps(*order)
	default:
		err = fmt.Errorf("unknown filter type %q", *filterType)
	}
	if err != nil {
		return err
	}

	format := fixdsp.Format{Bitwidth: *bitwidth, FractionWidth: *fraction}
	quantized, err := format.QuantizeTaps(taps)
	if err != nil {
		return err
	}

	fmt.Printf("# %s filter, %d taps, Q(%d.%d)\n", *filterType, len(taps), *bitwidth, *fraction)
	fmt.Printf("# max tap quantization error: %.3e\n", maxQuantError(taps, quantized, format))
	fmt.Println("# freq_hz\tmag_db")

	mags := design.MagnitudeDB(design.FrequencyResponse(taps, *points), floorDB)
	for i, db := range mags {
		freq := float64(i) * float64(*rate) / float64(*points)
		fmt.Printf("%9.1f\t%8.2f\n", freq, db)
	}
	return nil
}

func maxQuantError(taps []float64, quantized []int64, format fixdsp.Format) float64 {
	var worst float64
	for i, t := range taps {
		e := math.Abs(format.Dequantize(quantized[i]) - t)
		if e > worst {
			worst = e
		}
	}
	return worst
}
