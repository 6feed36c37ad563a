package modifier

import "github.com/takehaya/flowgen/pkg/field"

// fieldBuilder keeps the first construction error so field lists can be
// written as a single literal.
type fieldBuilder struct {
	err error
}

func (fb *fieldBuilder) keep(err error) bool {
	if err != nil && fb.err == nil {
		fb.err = err
	}
	return err == nil
}

func (fb *fieldBuilder) unsigned(s field.UnsignedSpec) *field.Unsigned {
	f, err := field.NewUnsigned(s)
	if !fb.keep(err) {
		return nil
	}
	return f
}

func (fb *fieldBuilder) enum(s field.EnumSpec) *field.Enum {
	f, err := field.NewEnum(s)
	if !fb.keep(err) {
		return nil
	}
	return f
}

func (fb *fieldBuilder) wordBlock(s field.WordBlockSpec) *field.WordBlock {
	f, err := field.NewWordBlock(s)
	if !fb.keep(err) {
		return nil
	}
	return f
}

func editable(id, name, description string, bits int) field.Spec {
	return field.Spec{ID: id, Name: name, Description: description, Editable: true, BitSize: bits}
}
