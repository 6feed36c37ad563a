package modifier

import (
	"math"

	"github.com/takehaya/flowgen/pkg/field"
)

const TypeRate = "rate"

func init() {
	MustRegister(TypeRate, true, NewRate)
}

type rateOptions struct {
	// link rate in Mb/s, including minimum gap and preamble
	LineRate uint64 `mapstructure:"line_rate" default:"10000"`
	// minimum inter-frame gap in bytes
	MinGap uint64 `mapstructure:"min_gap" default:"12"`
}

// Rate limits the rate of a flow. The operator sets either the rate or the
// inter-frame gap; the other one is derived from it and the packet size of
// the flow's skeleton sender.
type Rate struct {
	*Base
	rate *field.Unsigned
	gap  *field.Unsigned
	size *field.Unsigned

	lineRate uint64
	minGap   uint64
}

func NewRate(flow Flow, info Info, opts Options) (Modifier, error) {
	b, err := NewBase(flow, info, "Rate", "Limits the rate of a flow", opts)
	if err != nil {
		return nil, err
	}
	var o rateOptions
	if err := decodeOptions(opts, &o); err != nil {
		return nil, b.errorf(ErrOptions, err.Error())
	}
	if o.LineRate == 0 || o.LineRate > math.MaxUint32 {
		return nil, b.errorf(ErrOptions, "line_rate should be between 1 and 4294967295")
	}
	if o.MinGap > math.MaxUint32 {
		return nil, b.errorf(ErrOptions, "min_gap should fit in 32 bits")
	}

	var skeleton *SkeletonSender
	if flow != nil {
		skeleton, _ = flow.ModifierByType(TypeSkeletonSender).(*SkeletonSender)
	}
	if skeleton == nil {
		return nil, b.errorf(ErrDependency, "a skeleton_sender modifier should be declared before the rate modifier")
	}

	m := &Rate{Base: b, size: skeleton.Size(), lineRate: o.LineRate, minGap: o.MinGap}
	b.bind(m)

	var fb fieldBuilder
	m.rate = fb.unsigned(field.UnsignedSpec{
		Spec: field.Spec{
			ID: "rate", Name: "Data rate (Mb/s)", Description: "Bit rate of this flow on the link",
			Editable: true, InputOnly: true, BitSize: 32,
		},
		Minimum: 1,
		Maximum: o.LineRate,
		Default: o.LineRate,
	})
	m.gap = fb.unsigned(field.UnsignedSpec{
		Spec:    editable("gap", "Inter-frame gap (bytes)", "Delay to wait for between 2 frames (time needed to send N bytes on the link)", 32),
		Minimum: o.MinGap,
		Default: o.MinGap,
	})
	if fb.err != nil {
		return nil, fb.err
	}
	if err := b.AddFields(m.rate, m.gap, field.Reserved(24)); err != nil {
		return nil, err
	}

	m.rate.ValueChanged().Subscribe(func(field.Field) { m.onRateChange() })
	m.gap.ValueChanged().Subscribe(func(field.Field) { m.onGapChange() })
	m.size.ValueChanged().Subscribe(func(field.Field) {
		m.setGapFromRate()
		m.setRateFromGap()
	})
	m.rate.AutoChanged().Subscribe(func(field.Field) { m.onAutoChange() })
	m.gap.AutoChanged().Subscribe(func(field.Field) { m.onAutoChange() })
	return m, nil
}

func (m *Rate) RateField() *field.Unsigned { return m.rate }
func (m *Rate) GapField() *field.Unsigned  { return m.gap }

// onAutoChange breaks the coupling when neither value is set by the operator.
func (m *Rate) onAutoChange() {
	if m.rate.Auto() && m.gap.Auto() {
		m.gap.SetAutoDefault()
		m.rate.SetAutoDefault()
	}
}

func (m *Rate) onGapChange() {
	if !m.gap.Auto() {
		m.setRateFromGap()
		m.rate.SetAuto(true)
	}
}

func (m *Rate) onRateChange() {
	if !m.rate.Auto() {
		m.setGapFromRate()
		m.gap.SetAuto(true)
	}
}

func (m *Rate) setGapFromRate() {
	rate := float64(m.rate.Value())
	if rate == 0 {
		return
	}
	// data size plus preamble and minimum gap
	minSize := float64(m.size.Value() + m.minGap + 1)
	size := math.RoundToEven((minSize / rate) * float64(m.lineRate))
	gap := size - minSize + float64(m.minGap)
	if gap < 0 {
		gap = 0
	}
	_ = m.gap.SetAutoValue(m.gap.Clamp(uint64(gap)))
}

func (m *Rate) setRateFromGap() {
	gap := float64(m.gap.Value())
	// data size with preamble
	size := float64(m.size.Value() + 1)
	minSize := size + float64(m.minGap)
	size += gap
	rate := math.RoundToEven((minSize * float64(m.lineRate)) / size)
	_ = m.rate.SetAutoValue(m.rate.Clamp(uint64(rate)))
}
