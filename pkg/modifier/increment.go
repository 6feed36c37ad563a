package modifier

import "github.com/takehaya/flowgen/pkg/field"

const TypeIncrement = "increment"

func init() {
	MustRegister(TypeIncrement, false, NewIncrement)
}

// Increment writes a counter at a packet offset, stepping it between two bounds.
type Increment struct {
	*Base
}

func NewIncrement(flow Flow, info Info, opts Options) (Modifier, error) {
	b, err := NewBase(flow, info, "Increment", "Set data at a configured offset to incrementing values", opts)
	if err != nil {
		return nil, err
	}
	m := &Increment{Base: b}
	b.bind(m)

	var fb fieldBuilder
	fields := []field.Field{
		fb.unsigned(field.UnsignedSpec{Spec: editable("min", "Minimum", "Minimum counter value", 16)}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("max", "Maximum", "Maximum counter value", 16), Default: 255}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("skip", "Change skip period", "Packets skipped between each value change", 16)}),
		fb.enum(field.EnumSpec{
			Spec: editable("mode", "Count mode", "Increment or decrement the field", 1),
			Options: []field.Option{
				{Label: "Increment", Pattern: []byte{0x00}},
				{Label: "Decrement", Pattern: []byte{0x01}},
			},
			Default: []byte{0x00},
		}),
		field.Reserved(7),
		fb.unsigned(field.UnsignedSpec{Spec: editable("step", "Increment value", "Value added or removed at each step", 16), Minimum: 1, Default: 1}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("offset", "Field offset", "Offset in bytes from packet start", 11)}),
		field.Reserved(37),
	}
	if fb.err != nil {
		return nil, fb.err
	}
	if err := b.AddFields(fields...); err != nil {
		return nil, err
	}
	return m, nil
}
