package modifier

import "github.com/takehaya/flowgen/pkg/field"

const TypeChecksum = "checksum"

func init() {
	MustRegister(TypeChecksum, false, NewChecksum)
}

// Checksum computes an internet checksum over a byte range and stores it in
// the packet.
type Checksum struct {
	*Base
}

func NewChecksum(flow Flow, info Info, opts Options) (Modifier, error) {
	b, err := NewBase(flow, info, "Checksum", "Computes a checksum value and sets it", opts)
	if err != nil {
		return nil, err
	}
	m := &Checksum{Base: b}
	b.bind(m)

	var fb fieldBuilder
	fields := []field.Field{
		fb.unsigned(field.UnsignedSpec{Spec: editable("start-offset", "Data start offset", "Offset of the first byte to compute the checksum on", 11)}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("end-offset", "Data end offset", "Offset of the last byte to compute the checksum on", 11), Default: 2047}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("value-offset", "Value offset", "Offset of first byte to put the checksum value", 11), Maximum: 1521}),
		fb.unsigned(field.UnsignedSpec{Spec: editable("ip-offset", "IP header offset", "Offset of first byte of the IP header, if any", 11)}),
		fb.enum(field.EnumSpec{
			Spec: editable("type", "Pseudo-header", "Type of the pseudo-header to include in the Checksum computation, if any", 2),
			Options: []field.Option{
				{Label: "None", Pattern: []byte{0x00}},
				{Label: "IPv4", Pattern: []byte{0x01}},
				{Label: "IPv6", Pattern: []byte{0x02}},
			},
			Default: []byte{0x00},
		}),
		field.Reserved(10),
	}
	if fb.err != nil {
		return nil, fb.err
	}
	if err := b.AddFields(fields...); err != nil {
		return nil, err
	}
	return m, nil
}
