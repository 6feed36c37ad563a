// Package modifier implements the hardware register blocks of a flow and
// compiles them into the bit stream the generator reads.
package modifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/takehaya/flowgen/pkg/event"
	"github.com/takehaya/flowgen/pkg/field"
)

// Options is the per-instance configuration map read from the descriptor.
// The "id" entry is required.
type Options map[string]interface{}

// Flow gives a modifier access to the modifiers added before it.
type Flow interface {
	ModifierByType(tag string) Modifier
}

// Modifier is one register block. Every implementation embeds *Base.
type Modifier interface {
	ID() int
	Type() string
	Name() string
	Description() string
	Mandatory() bool
	Flow() Flow

	Enabled() bool
	SetEnabled(enabled bool) error
	EnabledChanged() *event.Channel[Modifier]

	Fields() []field.Field
	Field(id string) field.Field

	// Bytes returns the identifier byte followed by the packed fields.
	Bytes() []byte
	// ConfigData renders the commented hexadecimal block of this modifier.
	ConfigData() string

	Reset()
	State() State
	Restore(s State) error

	base() *Base
}

// Base carries the state shared by every modifier.
type Base struct {
	self Modifier
	flow Flow
	info Info

	id          int
	name        string
	description string
	enabled     bool
	fields      []field.Field

	enabledChanged event.Channel[Modifier]
}

// NewBase validates the identifier in opts and returns an empty modifier.
func NewBase(flow Flow, info Info, name, description string, opts Options) (*Base, error) {
	b := &Base{
		flow:        flow,
		info:        info,
		name:        name,
		description: description,
		enabled:     info.Mandatory,
	}
	id, err := optionID(opts)
	if err != nil {
		return nil, b.errorf(ErrInvalidID, err.Error())
	}
	b.id = id
	b.self = b
	return b, nil
}

func (b *Base) base() *Base { return b }

func (b *Base) bind(self Modifier) {
	b.self = self
}

func (b *Base) errorf(sentinel error, msg string) *ModifierError {
	return &ModifierError{Modifier: b.name, ID: b.id, Message: msg, Err: sentinel}
}

func optionID(opts Options) (int, error) {
	raw, ok := opts["id"]
	if !ok {
		return 0, fmt.Errorf("the identifier should be set as an integer")
	}
	var id int64
	switch v := raw.(type) {
	case int:
		id = int64(v)
	case int64:
		id = v
	case int32:
		id = int64(v)
	case uint8:
		id = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("the identifier %d does not fit in one byte", v)
		}
		id = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("the identifier should be set as an integer")
		}
		id = int64(v)
	default:
		return 0, fmt.Errorf("the identifier should be set as an integer")
	}
	if id < 0 || id > math.MaxUint8 {
		return 0, fmt.Errorf("the identifier %d does not fit in one byte", id)
	}
	return int(id), nil
}

func (b *Base) ID() int             { return b.id }
func (b *Base) Type() string        { return b.info.Tag }
func (b *Base) Name() string        { return b.name }
func (b *Base) Description() string { return b.description }
func (b *Base) Mandatory() bool     { return b.info.Mandatory }
func (b *Base) Flow() Flow          { return b.flow }

func (b *Base) EnabledChanged() *event.Channel[Modifier] { return &b.enabledChanged }

// Enabled reports whether the modifier takes part in its flow. Mandatory
// modifiers always do.
func (b *Base) Enabled() bool {
	return b.info.Mandatory || b.enabled
}

func (b *Base) SetEnabled(enabled bool) error {
	if b.info.Mandatory && !enabled {
		return b.errorf(ErrMandatory, "Mandatory modifiers may not be disabled")
	}
	if enabled == b.enabled {
		return nil
	}
	b.enabled = enabled
	b.enabledChanged.Publish(b.self)
	return nil
}

// Fields returns a copy of the field list.
func (b *Base) Fields() []field.Field {
	return append([]field.Field(nil), b.fields...)
}

// Field returns the field with the given identifier, or nil.
func (b *Base) Field(id string) field.Field {
	if id == "" {
		return nil
	}
	for _, f := range b.fields {
		if f.ID() == id {
			return f
		}
	}
	return nil
}

// AddFields appends fields in packing order. Identifiers must be unique.
func (b *Base) AddFields(fields ...field.Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		id := f.ID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup || b.Field(id) != nil {
			return b.errorf(ErrDuplicateID, "The field identifier "+id+" is already used.")
		}
		seen[id] = struct{}{}
	}
	b.fields = append(b.fields, fields...)
	return nil
}

// Reset puts every field back to its default and re-enables mandatory
// modifiers only.
func (b *Base) Reset() {
	if b.enabled != b.info.Mandatory {
		b.enabled = b.info.Mandatory
		b.enabledChanged.Publish(b.self)
	}
	for _, f := range b.fields {
		f.Reset()
	}
}

func (b *Base) Bytes() []byte {
	return Pack(byte(b.id), b.fields)
}

func (b *Base) ConfigData() string {
	var sb strings.Builder
	sb.WriteString("-- " + b.name + "\n")
	sb.WriteString("--------------------\n")
	fmt.Fprintf(&sb, "-- Identifier: %d\n", b.id)
	for _, f := range b.fields {
		if s, ok := f.Display(); ok {
			sb.WriteString("-- " + f.Name() + ": " + s + "\n")
		}
	}
	sb.WriteString(strings.Join(HexLines(b.Bytes()), "\n"))
	return sb.String()
}
