package filter

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// Structure selects the recursion structure of the stages in a Bank.
type Structure int

const (
	// StructureFIR builds the bank from windowed-sinc FIR stages.
	StructureFIR Structure = iota

	// StructureIIR builds the bank from Chebyshev Type I IIR stages.
	StructureIIR
)

// defaultBankInstances is the number of cascaded stages when the config
// leaves it zero.
const defaultBankInstances = 2

// BankConfig configures a cascade of identical filter stages.
type BankConfig struct {
	// Instances is the number of cascaded stages. Defaults to 2.
	Instances int

	// SampleRate of the input stream in Hz.
	SampleRate int

	// Format is the fixed-point representation shared by all stages.
	Format fixdsp.Format

	// CutoffFreq in Hz of each stage. Defaults to 20 kHz.
	CutoffFreq float64

	// Order of each stage.
	Order int

	// Structure selects FIR or IIR stages.
	Structure Structure

	// Type selects lowpass or highpass design.
	Type Type
}

// bankStage is the tickable surface a cascade needs from a stage.
type bankStage interface {
	setInput(enable bool, signal int64)
	SignalOut() int64
	Tick()
}

// Bank cascades identical filter stages. The stages are chained
// combinationally: within one tick, each stage's pre-tick output feeds
// the next stage's input, and one shared enable drives them all, so a
// sample ripples one stage deeper per enabled tick. Cascading sharpens
// the composite roll-off without widening any single stage.
type Bank struct {
	EnableIn bool
	SignalIn int64

	stages []bankStage
}

// NewBank constructs a filter cascade.
func NewBank(cfg BankConfig) (*Bank, error) {
	if cfg.Instances == 0 {
		cfg.Instances = defaultBankInstances
	}
	if cfg.Instances < 1 {
		return nil, fmt.Errorf("%w: instance count %d must be positive", fixdsp.ErrInvalidConfig, cfg.Instances)
	}

	stages := make([]bankStage, cfg.Instances)
	for i := range stages {
		var (
			stage bankStage
			err   error
		)
		switch cfg.Structure {
		case StructureFIR:
			stage, err = NewFIR(FIRConfig{
				SampleRate: cfg.SampleRate,
				Format:     cfg.Format,
				CutoffFreq: cfg.CutoffFreq,
				Order:      cfg.Order,
				Type:       cfg.Type,
			})
		case StructureIIR:
			stage, err = NewIIR(IIRConfig{
				SampleRate: cfg.SampleRate,
				Format:     cfg.Format,
				CutoffFreq: cfg.CutoffFreq,
				Order:      cfg.Order,
				Type:       cfg.Type,
			})
		default:
			err = fmt.Errorf("%w: unknown bank structure %d", fixdsp.ErrInvalidConfig, cfg.Structure)
		}
		if err != nil {
			return nil, err
		}
		stages[i] = stage
	}

	return &Bank{stages: stages}, nil
}

// Tick advances the whole cascade by one clock. Inputs are wired first,
// each from the upstream stage's pre-tick output, then every stage ticks.
func (b *Bank) Tick() {
	signal := b.SignalIn
	for _, s := range b.stages {
		s.setInput(b.EnableIn, signal)
		signal = s.SignalOut()
	}
	for _, s := range b.stages {
		s.Tick()
	}
}

// SignalOut returns the last stage's output.
func (b *Bank) SignalOut() int64 {
	return b.stages[len(b.stages)-1].SignalOut()
}

// Instances returns the number of cascaded stages.
func (b *Bank) Instances() int { return len(b.stages) }
