// Command filter-wav runs a WAV file through the fixed-point filter
// cores, either as a straight lowpass/highpass filter or as a
// fractional sample rate converter.
//
// Usage:
//
//	filter-wav -cutoff 4000 input.wav output.wav
//	filter-wav -type high -cutoff 200 input.wav output.wav
//	filter-wav -up 2 -down 3 input.wav output.wav   # resample by 2/3
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	fixdsp "github.com/streamdsp/go-fixdsp"
	"github.com/streamdsp/go-fixdsp/filter"
	"github.com/streamdsp/go-fixdsp/resample"
	"github.com/streamdsp/go-fixdsp/stream"
)

const (
	defaultCutoff = 4000.0
	defaultOrder  = 24

	// Q(24.24) keeps two guard bits above 24-bit PCM and leaves
	// multiplication headroom inside int64.
	formatBitwidth = 24
	formatFraction = 24

	minRequiredArgs = 2
	wavAudioFormat  = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	filterType := flag.String("type", "low", "Filter type: low or high")
	cutoff := flag.Float64("cutoff", defaultCutoff, "Cutoff frequency in Hz")
	order := flag.Int("order", defaultOrder, "Filter order (tap count)")
	up := flag.Int("up", 0, "Upsampling factor (enables resampling together with -down)")
	down := flag.Int("down", 0, "Downsampling factor")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	if (*up == 0) != (*down == 0) {
		return fmt.Errorf("-up and -down must be given together")
	}

	buf, err := readWAV(args[0])
	if err != nil {
		return err
	}

	format := fixdsp.Format{Bitwidth: formatBitwidth, FractionWidth: formatFraction}
	channels := deinterleave(buf)
	outRate := buf.Format.SampleRate

	for ch, samples := range channels {
		fp := toFixed(samples, buf.SourceBitDepth, format)
		if *up > 0 {
			fp, err = resampleChannel(fp, buf.Format.SampleRate, *up, *down, format)
			outRate = buf.Format.SampleRate * *up / *down
		} else {
			fp, err = filterChannel(fp, buf.Format.SampleRate, *filterType, *cutoff, *order, format)
		}
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		channels[ch] = fromFixed(fp, buf.SourceBitDepth, format)
	}

	out := interleave(channels, outRate, buf.SourceBitDepth)
	return writeWAV(args[1], out)
}

// filterChannel streams one channel through a single FIR core.
func filterChannel(samples []int64, rate int, filterType string, cutoff float64, order int, format fixdsp.Format) ([]int64, error) {
	cfg := filter.FIRConfig{
		SampleRate: rate,
		Format:     format,
		CutoffFreq: cutoff,
		Order:      order,
	}
	switch filterType {
	case "low":
		cfg.Type = filter.Lowpass
	case "high":
		cfg.Type = filter.Highpass
	default:
		return nil, fmt.Errorf("unknown filter type %q", filterType)
	}

	core, err := filter.NewFIR(cfg)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(samples))
	for i, s := range samples {
		core.EnableIn = true
		core.SignalIn = s
		core.Tick()
		out[i] = core.SignalOut()
	}
	return out, nil
}

// resampleChannel streams one channel through a fractional resampler,
// idling the input port while the core works through each upsampling
// cycle.
func resampleChannel(samples []int64, rate, up, down int, format fixdsp.Format) ([]int64, error) {
	conv, err := resample.NewFractional(resample.FractionalConfig{
		SampleRate:       rate,
		Format:           format,
		UpsampleFactor:   up,
		DownsampleFactor: down,
	})
	if err != nil {
		return nil, err
	}

	var out []int64
	next := 0
	// Idle ticks after the last sample flush the filter pipeline and
	// the output queue.
	drain := 4*up*down + 256
	for idle := 0; idle < drain; {
		if next < len(samples) {
			conv.In.Put(stream.Token{Payload: samples[next]})
		} else {
			conv.In.Valid = false
			idle++
		}
		conv.Out.Ready = true
		conv.Tick()
		if conv.In.Fires() {
			next++
		}
		if conv.Out.Valid {
			out = append(out, conv.Out.Payload)
		}
	}
	return out, nil
}

func readWAV(path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return buf, nil
}

func writeWAV(path string, buf *audio.IntBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, wavAudioFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return enc.Close()
}

func deinterleave(buf *audio.IntBuffer) [][]int64 {
	nch := buf.Format.NumChannels
	frames := len(buf.Data) / nch
	out := make([][]int64, nch)
	for ch := range out {
		out[ch] = make([]int64, frames)
		for i := 0; i < frames; i++ {
			out[ch][i] = int64(buf.Data[i*nch+ch])
		}
	}
	return out
}

func interleave(channels [][]int64, rate, bitDepth int) *audio.IntBuffer {
	nch := len(channels)
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < frames {
			frames = len(ch)
		}
	}
	data := make([]int, frames*nch)
	for ch, samples := range channels {
		for i := 0; i < frames; i++ {
			data[i*nch+ch] = int(samples[i])
		}
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nch, SampleRate: rate},
		SourceBitDepth: bitDepth,
		Data:           data,
	}
}

// toFixed rescales PCM integers of the given bit depth into the
// fixed-point format's fractional range.
func toFixed(samples []int64, bitDepth int, format fixdsp.Format) []int64 {
	shift := format.FractionWidth - (bitDepth - 1)
	out := make([]int64, len(samples))
	for i, s := range samples {
		if shift >= 0 {
			out[i] = s << uint(shift)
		} else {
			out[i] = s >> uint(-shift)
		}
	}
	return out
}

// fromFixed converts fixed-point samples back to PCM integers, clamping
// to the output bit depth.
func fromFixed(samples []int64, bitDepth int, format fixdsp.Format) []int64 {
	shift := format.FractionWidth - (bitDepth - 1)
	limit := int64(1)<<uint(bitDepth-1) - 1
	out := make([]int64, len(samples))
	for i, s := range samples {
		if shift >= 0 {
			s >>= uint(shift)
		} else {
			s <<= uint(-shift)
		}
		if s > limit {
			s = limit
		}
		if s < -limit-1 {
			s = -limit - 1
		}
		out[i] = s
	}
	return out
}
