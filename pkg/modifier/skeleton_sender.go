package modifier

import "github.com/takehaya/flowgen/pkg/field"

const TypeSkeletonSender = "skeleton_sender"

const (
	minPacketBytes = 64
	maxPacketBytes = 1522
)

func init() {
	MustRegister(TypeSkeletonSender, true, NewSkeletonSender)
}

// SkeletonSender holds the base packet every other modifier edits.
type SkeletonSender struct {
	*Base
	size *field.Unsigned
	data *field.WordBlock
}

func NewSkeletonSender(flow Flow, info Info, opts Options) (Modifier, error) {
	b, err := NewBase(flow, info, "Skeleton sender", "Base packet data, to be completed and edited by modifiers", opts)
	if err != nil {
		return nil, err
	}
	m := &SkeletonSender{Base: b}
	b.bind(m)

	var fb fieldBuilder
	iterations := fb.unsigned(field.UnsignedSpec{
		Spec:    editable("iterations", "Iterations", "Number of packets sent", 32),
		Minimum: 1,
		Default: 1,
	})
	m.size = fb.unsigned(field.UnsignedSpec{
		Spec:    field.Spec{ID: "size", Name: "Data size", Description: "Number of bytes for 1 packet", BitSize: 11},
		Default: minPacketBytes,
	})
	m.data = fb.wordBlock(field.WordBlockSpec{
		Spec:       editable("data", "Data", "Base packet data", minPacketBytes*8),
		MinBitSize: minPacketBytes * 8,
		MaxBitSize: maxPacketBytes * 8,
	})
	if fb.err != nil {
		return nil, fb.err
	}
	if err := b.AddFields(iterations, field.Reserved(13), m.size, m.data); err != nil {
		return nil, err
	}

	m.data.SizeChanged().Subscribe(func(field.Field) { m.onPacketSizeChange() })
	m.onPacketSizeChange()
	return m, nil
}

func (m *SkeletonSender) onPacketSizeChange() {
	_ = m.size.SetAutoValue(uint64(m.data.ByteSize()))
}

// Size is the packet length derived from the payload field.
func (m *SkeletonSender) Size() *field.Unsigned { return m.size }

// Data is the base packet payload.
func (m *SkeletonSender) Data() *field.WordBlock { return m.data }
