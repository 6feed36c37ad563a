package field

// TypeBits is the Type of reserved bit ranges.
const TypeBits = "bits"

// Bits reserves a range of bits without any decoded value.
type Bits struct {
	*base
	def []byte
}

// NewBits builds a reserved range. def, when not nil, is the default auto value.
func NewBits(s Spec, def []byte) (*Bits, error) {
	b, err := newBase(TypeBits, s, s.BitSize, s.BitSize)
	if err != nil {
		return nil, err
	}
	f := &Bits{base: b, def: append([]byte(nil), def...)}
	b.self = f
	if def != nil {
		f.SetAutoBytes(def)
	}
	return f, nil
}

// Reserved is a shorthand for an anonymous zero-filled range of n bits.
func Reserved(n int) *Bits {
	f, err := NewBits(Spec{BitSize: n}, nil)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Bits) Reset() {
	f.reset()
	if len(f.def) > 0 {
		f.SetAutoBytes(f.def)
	}
}
