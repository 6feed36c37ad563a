package field

import "bytes"

// TypeEnum is the Type of enumerated fields.
const TypeEnum = "enum"

// UnknownOption is the label of a pattern matching no option.
const UnknownOption = "unknown"

// Option maps a label to its byte pattern.
type Option struct {
	Label   string
	Pattern []byte
}

// EnumSpec configures an Enum field.
type EnumSpec struct {
	Spec
	Options []Option
	// Default is a pattern; nil selects the first option.
	Default []byte
}

// Enum selects one of a fixed list of byte patterns.
type Enum struct {
	*base
	options []Option
	def     []byte
}

func NewEnum(s EnumSpec) (*Enum, error) {
	b, err := newBase(TypeEnum, s.Spec, s.BitSize, s.BitSize)
	if err != nil {
		return nil, err
	}
	if len(s.Options) < 1 {
		return nil, b.errorf(ErrInvalidSpec, "an options list with at least 1 option is required")
	}
	size := b.ByteSize()
	seen := make(map[string]struct{}, len(s.Options))
	options := make([]Option, 0, len(s.Options))
	for _, o := range s.Options {
		if _, dup := seen[o.Label]; dup {
			return nil, b.errorf(ErrInvalidSpec, "option "+o.Label+" is defined twice")
		}
		seen[o.Label] = struct{}{}
		if len(o.Pattern) > size {
			return nil, b.errorf(ErrInvalidSpec, "option values are too big")
		}
		pattern := make([]byte, size)
		copy(pattern, o.Pattern)
		options = append(options, Option{Label: o.Label, Pattern: pattern})
	}
	def := options[0].Pattern
	if s.Default != nil {
		if len(s.Default) > size {
			return nil, b.errorf(ErrInvalidSpec, "default value is too big")
		}
		def = make([]byte, size)
		copy(def, s.Default)
	}
	f := &Enum{base: b, options: options, def: def}
	b.self = f
	f.SetAutoDefault()
	return f, nil
}

// Options returns a copy of the option list.
func (f *Enum) Options() []Option {
	out := make([]Option, len(f.options))
	for i, o := range f.options {
		out[i] = Option{Label: o.Label, Pattern: append([]byte(nil), o.Pattern...)}
	}
	return out
}

// Encode returns the pattern registered under label.
func (f *Enum) Encode(label string) ([]byte, error) {
	for _, o := range f.options {
		if o.Label == label {
			return append([]byte(nil), o.Pattern...), nil
		}
	}
	return nil, f.errorf(ErrUnknownOption, "unknown option "+label)
}

// Decode returns the label of b, or UnknownOption.
func (f *Enum) Decode(b []byte) string {
	for _, o := range f.options {
		if bytes.Equal(o.Pattern, b) {
			return o.Label
		}
	}
	return UnknownOption
}

func (f *Enum) Value() string     { return f.Decode(f.buffer(f.auto)) }
func (f *Enum) UserValue() string { return f.Decode(f.buffer(false)) }
func (f *Enum) AutoValue() string { return f.Decode(f.buffer(true)) }

func (f *Enum) SetUserValue(label string) error { return f.setValue(label, false) }
func (f *Enum) SetAutoValue(label string) error { return f.setValue(label, true) }

func (f *Enum) SetAutoDefault() {
	f.setBytes(f.def, true)
}

func (f *Enum) setValue(label string, auto bool) error {
	pattern, err := f.Encode(label)
	if err != nil {
		return err
	}
	f.setBytes(pattern, auto)
	return nil
}

func (f *Enum) Display() (string, bool) {
	return f.Value(), true
}

func (f *Enum) Reset() {
	f.reset()
	f.SetAutoDefault()
}
