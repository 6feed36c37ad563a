package field

import (
	"math"
	"strconv"
)

// TypeUnsigned is the Type of unsigned integer fields.
const TypeUnsigned = "unsigned"

// UnsignedSpec configures an Unsigned field.
type UnsignedSpec struct {
	Spec
	Minimum uint64
	// Maximum of 0 selects the full range of BitSize.
	Maximum uint64
	Default uint64
}

// Unsigned is a little-endian unsigned integer of at most 64 bits.
type Unsigned struct {
	*base
	min uint64
	max uint64
	def uint64
}

func NewUnsigned(s UnsignedSpec) (*Unsigned, error) {
	b, err := newBase(TypeUnsigned, s.Spec, s.BitSize, s.BitSize)
	if err != nil {
		return nil, err
	}
	if s.BitSize > 64 {
		return nil, b.errorf(ErrInvalidSpec, "size should be at most 64 bits")
	}
	if s.Maximum > fullRange(s.BitSize) {
		return nil, b.errorf(ErrInvalidSpec, "maximum does not fit in the field size")
	}
	maximum := s.Maximum
	if maximum == 0 {
		maximum = fullRange(s.BitSize)
	}
	if s.Minimum > maximum {
		return nil, b.errorf(ErrInvalidSpec, "minimum should not exceed the maximum")
	}
	if s.Default < s.Minimum || s.Default > maximum {
		return nil, b.errorf(ErrInvalidSpec, "default value should be between the minimum and maximum")
	}
	f := &Unsigned{base: b, min: s.Minimum, max: maximum, def: s.Default}
	b.self = f
	f.SetAutoDefault()
	return f, nil
}

func fullRange(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(bits) - 1
}

func (f *Unsigned) Minimum() uint64 { return f.min }
func (f *Unsigned) Maximum() uint64 { return f.max }
func (f *Unsigned) Default() uint64 { return f.def }

// Encode returns v as little-endian bytes of the field width.
func (f *Unsigned) Encode(v uint64) ([]byte, error) {
	if v < f.min || v > f.max {
		return nil, f.errorf(ErrValueOutOfRange, "value should be between the minimum and maximum")
	}
	out := make([]byte, f.ByteSize())
	for i := range out {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out, nil
}

// Decode reads a little-endian integer from b.
func (f *Unsigned) Decode(b []byte) uint64 {
	var v uint64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

func (f *Unsigned) Value() uint64     { return f.Decode(f.buffer(f.auto)) }
func (f *Unsigned) UserValue() uint64 { return f.Decode(f.buffer(false)) }
func (f *Unsigned) AutoValue() uint64 { return f.Decode(f.buffer(true)) }

func (f *Unsigned) SetUserValue(v uint64) error { return f.setValue(v, false) }
func (f *Unsigned) SetAutoValue(v uint64) error { return f.setValue(v, true) }

// SetAutoDefault puts the default back into the auto buffer.
func (f *Unsigned) SetAutoDefault() {
	_ = f.setValue(f.def, true)
}

func (f *Unsigned) setValue(v uint64, auto bool) error {
	encoded, err := f.Encode(v)
	if err != nil {
		return err
	}
	if (auto || f.hasUser()) && v == f.Decode(f.buffer(auto)) {
		return nil
	}
	f.setBytes(encoded, auto)
	return nil
}

// Clamp limits v to the field range.
func (f *Unsigned) Clamp(v uint64) uint64 {
	if v < f.min {
		return f.min
	}
	if v > f.max {
		return f.max
	}
	return v
}

func (f *Unsigned) Display() (string, bool) {
	return strconv.FormatUint(f.Value(), 10), true
}

func (f *Unsigned) Reset() {
	f.reset()
	f.SetAutoDefault()
}
