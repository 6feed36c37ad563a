package field

import (
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Hex is a byte slice persisted as a hexadecimal string.
type Hex []byte

func (h Hex) MarshalYAML() (interface{}, error) {
	return hex.EncodeToString(h), nil
}

func (h *Hex) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid hex bytes: %w", value.Line, err)
	}
	*h = b
	return nil
}

// State is the persisted form of a field.
type State struct {
	ID        string `yaml:"id"`
	Type      string `yaml:"type"`
	BitSize   int    `yaml:"bit_size"`
	Auto      bool   `yaml:"auto"`
	AutoBytes Hex    `yaml:"auto_bytes"`
	UserBytes Hex    `yaml:"user_bytes,omitempty"`
}

// Snapshot captures the size, buffers and mode of f.
func Snapshot(f Field) State {
	b := f.core()
	s := State{
		ID:        b.id,
		Type:      b.kind,
		BitSize:   b.bitSize,
		Auto:      b.auto,
		AutoBytes: append(Hex(nil), b.autoBytes...),
	}
	if b.hasUser() {
		s.UserBytes = append(Hex(nil), b.userBytes...)
	}
	return s
}

// Restore copies a persisted state into f through the regular setters, so
// dependent fields see the change. The state must come from a field of the
// same type; the size must fit the bounds of f and both buffers must hold
// exactly that many bytes. A state without user bytes drops any user value
// f holds, so the user value reads through to the auto value again.
func Restore(f Field, s State) error {
	b := f.core()
	if s.Type != b.kind {
		return b.errorf(ErrIncompatibleType, "cannot restore a "+s.Type+" value")
	}
	if s.BitSize < b.minBitSize || s.BitSize > b.maxBitSize {
		return b.errorf(ErrSizeOutOfRange, "unauthorized field size")
	}
	size := byteSize(s.BitSize)
	if len(s.AutoBytes) != size || (s.UserBytes != nil && len(s.UserBytes) != size) {
		return b.errorf(ErrInvalidState, fmt.Sprintf("saved bytes do not match a size of %d bits", s.BitSize))
	}
	if err := f.SetBitSize(s.BitSize); err != nil {
		return err
	}
	if s.UserBytes != nil {
		f.SetUserBytes(s.UserBytes)
	} else {
		b.dropUser()
	}
	f.SetAutoBytes(s.AutoBytes)
	f.SetAuto(s.Auto)
	return nil
}
