// Package field implements the typed bit-fields a modifier is made of.
//
// Every field keeps two byte buffers: the auto value maintained by the
// system (defaults and values derived from other fields) and the user value
// set by the operator. Auto selects which one is current. Buffers hold
// ceil(BitSize/8) bytes, byte 0 being the least significant one.
package field

import (
	"bytes"

	"github.com/takehaya/flowgen/pkg/event"
)

// Field is implemented by Bits, Unsigned, Enum and WordBlock only.
type Field interface {
	ID() string
	Name() string
	Description() string
	Type() string
	Editable() bool
	InConfig() bool

	BitSize() int
	SetBitSize(n int) error
	MinBitSize() int
	MaxBitSize() int
	ByteSize() int

	Auto() bool
	SetAuto(auto bool)
	Bytes() []byte
	UserBytes() []byte
	AutoBytes() []byte
	SetUserBytes(b []byte)
	SetAutoBytes(b []byte)

	// Display returns the human form of the current value, if the field has one.
	Display() (string, bool)
	Reset()

	ValueChanged() *event.Channel[Field]
	SizeChanged() *event.Channel[Field]
	AutoChanged() *event.Channel[Field]

	core() *base
}

// Spec holds the options shared by every field variant.
type Spec struct {
	ID          string
	Name        string
	Description string
	// Editable fields are exposed to the operator and need ID, Name and Description.
	Editable bool
	// InputOnly fields are read by their modifier but never packed.
	InputOnly bool
	BitSize   int
}

type base struct {
	self Field
	kind string

	id          string
	name        string
	description string
	editable    bool
	inConfig    bool

	defaultBitSize int
	bitSize        int
	minBitSize     int
	maxBitSize     int

	auto      bool
	autoBytes []byte
	// nil until the operator writes a value or switches to user mode
	userBytes []byte

	valueChanged event.Channel[Field]
	sizeChanged  event.Channel[Field]
	autoChanged  event.Channel[Field]
}

func newBase(kind string, s Spec, minBits, maxBits int) (*base, error) {
	if s.Editable && (s.ID == "" || s.Name == "" || s.Description == "") {
		return nil, newError(s.Name, kind, ErrInvalidSpec, "editable fields should have an identifier, a name and a description")
	}
	if minBits < 0 || minBits > maxBits || s.BitSize < minBits || s.BitSize > maxBits {
		return nil, newError(s.Name, kind, ErrInvalidSpec, "field size options are invalid")
	}
	b := &base{
		kind:           kind,
		id:             s.ID,
		name:           s.Name,
		description:    s.Description,
		editable:       s.Editable,
		inConfig:       !s.InputOnly,
		defaultBitSize: s.BitSize,
		bitSize:        s.BitSize,
		minBitSize:     minBits,
		maxBitSize:     maxBits,
		auto:           true,
	}
	b.autoBytes = make([]byte, b.ByteSize())
	return b, nil
}

func (b *base) core() *base { return b }

func (b *base) errorf(sentinel error, msg string) *FieldError {
	return newError(b.name, b.kind, sentinel, msg)
}

func (b *base) ID() string          { return b.id }
func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Type() string        { return b.kind }
func (b *base) Editable() bool      { return b.editable }
func (b *base) InConfig() bool      { return b.inConfig }
func (b *base) BitSize() int        { return b.bitSize }
func (b *base) MinBitSize() int     { return b.minBitSize }
func (b *base) MaxBitSize() int     { return b.maxBitSize }
func (b *base) ByteSize() int       { return byteSize(b.bitSize) }
func (b *base) Auto() bool          { return b.auto }

func (b *base) ValueChanged() *event.Channel[Field] { return &b.valueChanged }
func (b *base) SizeChanged() *event.Channel[Field]  { return &b.sizeChanged }
func (b *base) AutoChanged() *event.Channel[Field]  { return &b.autoChanged }

func byteSize(bits int) int {
	return (bits + 7) / 8
}

// SetBitSize resizes both buffers, dropping or zero-filling bytes at the
// leading end so the trailing bytes are kept.
func (b *base) SetBitSize(n int) error {
	if n == b.bitSize {
		return nil
	}
	if n < b.minBitSize || n > b.maxBitSize {
		return b.errorf(ErrSizeOutOfRange, "unauthorized field size")
	}
	b.bitSize = n
	size := b.ByteSize()
	b.autoBytes = resize(b.autoBytes, size)
	if b.userBytes != nil {
		b.userBytes = resize(b.userBytes, size)
	}
	b.sizeChanged.Publish(b.self)
	return nil
}

func resize(buf []byte, size int) []byte {
	switch {
	case len(buf) > size:
		return append([]byte(nil), buf[len(buf)-size:]...)
	case len(buf) < size:
		out := make([]byte, size)
		copy(out[size-len(buf):], buf)
		return out
	}
	return buf
}

// SetAuto switches between the auto and the user value.
func (b *base) SetAuto(auto bool) {
	if auto == b.auto {
		return
	}
	if !auto && b.userBytes == nil {
		b.userBytes = append([]byte(nil), b.autoBytes...)
	}
	b.auto = auto
	b.autoChanged.Publish(b.self)
	if !bytes.Equal(b.autoBytes, b.user()) {
		b.valueChanged.Publish(b.self)
	}
}

func (b *base) user() []byte {
	if b.userBytes == nil {
		return b.autoBytes
	}
	return b.userBytes
}

func (b *base) hasUser() bool {
	return b.userBytes != nil
}

// dropUser forgets the user buffer. The change is published when the user
// value was current and differed from the auto value.
func (b *base) dropUser() {
	if b.userBytes == nil {
		return
	}
	changed := !b.auto && !bytes.Equal(b.userBytes, b.autoBytes)
	b.userBytes = nil
	if changed {
		b.valueChanged.Publish(b.self)
	}
}

func (b *base) buffer(auto bool) []byte {
	if auto {
		return b.autoBytes
	}
	return b.user()
}

// getBytes returns a copy of one buffer. The user buffer reads through to the
// auto buffer until it has been written.
func (b *base) getBytes(auto bool) []byte {
	return append([]byte(nil), b.buffer(auto)...)
}

// setBytes overwrites one buffer with v, truncated or zero-filled to the
// byte size. Only a write to the current buffer is published.
func (b *base) setBytes(v []byte, auto bool) {
	buf := make([]byte, b.ByteSize())
	copy(buf, v)
	if auto {
		b.autoBytes = buf
	} else {
		b.userBytes = buf
	}
	if auto == b.auto {
		b.valueChanged.Publish(b.self)
	}
}

func (b *base) Bytes() []byte         { return b.getBytes(b.auto) }
func (b *base) UserBytes() []byte     { return b.getBytes(false) }
func (b *base) AutoBytes() []byte     { return b.getBytes(true) }
func (b *base) SetUserBytes(v []byte) { b.setBytes(v, false) }
func (b *base) SetAutoBytes(v []byte) { b.setBytes(v, true) }

// reset restores the default size, clears the auto value and forgets the
// user value. Variants re-derive their default auto value afterwards.
func (b *base) reset() {
	// the default size always lies within the bounds
	_ = b.SetBitSize(b.defaultBitSize)
	b.setBytes(nil, true)
	b.SetAuto(true)
	b.userBytes = nil
}

func (b *base) Display() (string, bool) {
	return "", false
}
