package field

// TypeWordBlock is the Type of payload fields.
const TypeWordBlock = "word_block"

// WordBlockSpec configures a WordBlock field. Sizes are in bits and must be
// multiples of 8.
type WordBlockSpec struct {
	Spec
	MinBitSize int
	MaxBitSize int
}

// WordBlock holds opaque payload bytes of variable length. The logical byte
// order is the one the operator sees; stored bytes have their 8-byte words
// in mirrored order.
type WordBlock struct {
	*base
}

func NewWordBlock(s WordBlockSpec) (*WordBlock, error) {
	b, err := newBase(TypeWordBlock, s.Spec, s.MinBitSize, s.MaxBitSize)
	if err != nil {
		return nil, err
	}
	if s.BitSize%8 != 0 || s.MinBitSize%8 != 0 || s.MaxBitSize%8 != 0 {
		return nil, b.errorf(ErrInvalidSpec, "sizes should be a whole number of bytes")
	}
	f := &WordBlock{base: b}
	b.self = f
	return f, nil
}

// storedIndex maps logical position pos of an n-byte block to its stored
// position. Words keep their inner byte order.
func storedIndex(pos, n int) int {
	start := pos / 8 * 8
	wordLen := n - start
	if wordLen > 8 {
		wordLen = 8
	}
	return n - start - wordLen + pos%8
}

// ToStored applies the word-order transform to a logical byte sequence.
func ToStored(logical []byte) []byte {
	n := len(logical)
	out := make([]byte, n)
	for pos, v := range logical {
		out[storedIndex(pos, n)] = v
	}
	return out
}

// ToLogical reverses ToStored.
func ToLogical(stored []byte) []byte {
	n := len(stored)
	out := make([]byte, n)
	for pos := range out {
		out[pos] = stored[storedIndex(pos, n)]
	}
	return out
}

func (f *WordBlock) Value() []byte     { return ToLogical(f.buffer(f.auto)) }
func (f *WordBlock) UserValue() []byte { return ToLogical(f.buffer(false)) }
func (f *WordBlock) AutoValue() []byte { return ToLogical(f.buffer(true)) }

func (f *WordBlock) SetUserValue(v []byte) error { return f.setValue(v, false) }
func (f *WordBlock) SetAutoValue(v []byte) error { return f.setValue(v, true) }

// setValue resizes the field to len(v) bytes before storing v.
func (f *WordBlock) setValue(v []byte, auto bool) error {
	bits := len(v) * 8
	if bits < f.minBitSize || bits > f.maxBitSize {
		return f.errorf(ErrSizeOutOfRange, "unauthorized field size")
	}
	if err := f.SetBitSize(bits); err != nil {
		return err
	}
	f.setBytes(ToStored(v), auto)
	return nil
}

func (f *WordBlock) Reset() {
	f.reset()
}
