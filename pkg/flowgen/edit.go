package flowgen

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/takehaya/flowgen/pkg/field"
	"github.com/takehaya/flowgen/pkg/flow"
	"github.com/takehaya/flowgen/pkg/modifier"
	"github.com/takehaya/flowgen/pkg/packet"
)

func (f *Flowgen) flow(n int) (*flow.Generator, error) {
	g := f.Hardware.Flow(n)
	if g == nil {
		return nil, fmt.Errorf("flow %d: %w", n, ErrNotFound)
	}
	return g, nil
}

func (f *Flowgen) modifier(n, id int) (modifier.Modifier, error) {
	g, err := f.flow(n)
	if err != nil {
		return nil, err
	}
	m := g.Modifier(id)
	if m == nil {
		return nil, fmt.Errorf("flow %d: modifier %d: %w", n, id, ErrNotFound)
	}
	return m, nil
}

func (f *Flowgen) field(n, id int, fieldID string) (field.Field, error) {
	m, err := f.modifier(n, id)
	if err != nil {
		return nil, err
	}
	fl := m.Field(fieldID)
	if fl == nil {
		return nil, fmt.Errorf("flow %d: %s: field %q: %w", n, m.Name(), fieldID, ErrNotFound)
	}
	if !fl.Editable() {
		return nil, fmt.Errorf("flow %d: %s: field %q is not editable", n, m.Name(), fieldID)
	}
	return fl, nil
}

// Set writes value as the user value of a field and switches the field to
// it. Unsigned values accept the strconv base prefixes, enumerations take a
// label and word blocks a hex string.
func (f *Flowgen) Set(n, id int, fieldID, value string) error {
	fl, err := f.field(n, id, fieldID)
	if err != nil {
		return err
	}
	switch v := fl.(type) {
	case *field.Unsigned:
		u, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", value, err)
		}
		if err := v.SetUserValue(u); err != nil {
			return err
		}
	case *field.Enum:
		if err := v.SetUserValue(value); err != nil {
			return err
		}
	case *field.WordBlock:
		b, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
		if err != nil {
			return fmt.Errorf("invalid hex value: %w", err)
		}
		if err := v.SetUserValue(b); err != nil {
			return err
		}
	default:
		return fmt.Errorf("fields of type %s cannot be set", fl.Type())
	}
	fl.SetAuto(false)
	f.Logger.Info("field set",
		zap.Int("flow", n), zap.Int("modifier", id),
		zap.String("field", fieldID), zap.String("value", value))
	return nil
}

// Auto hands a field back to its automatic value.
func (f *Flowgen) Auto(n, id int, fieldID string) error {
	fl, err := f.field(n, id, fieldID)
	if err != nil {
		return err
	}
	fl.SetAuto(true)
	f.Logger.Info("field set to auto",
		zap.Int("flow", n), zap.Int("modifier", id), zap.String("field", fieldID))
	return nil
}

func (f *Flowgen) SetFlowEnabled(n int, enabled bool) error {
	g, err := f.flow(n)
	if err != nil {
		return err
	}
	g.SetEnabled(enabled)
	f.Logger.Info("flow updated", zap.Int("flow", n), zap.Bool("enabled", enabled))
	return nil
}

func (f *Flowgen) SetModifierEnabled(n, id int, enabled bool) error {
	m, err := f.modifier(n, id)
	if err != nil {
		return err
	}
	if err := m.SetEnabled(enabled); err != nil {
		return err
	}
	f.Logger.Info("modifier updated",
		zap.Int("flow", n), zap.Int("modifier", id), zap.Bool("enabled", enabled))
	return nil
}

func (f *Flowgen) SetFlowDescription(n int, description string) error {
	g, err := f.flow(n)
	if err != nil {
		return err
	}
	g.SetDescription(description)
	return nil
}

// LoadPacket builds a frame and makes it the user payload of the flow's
// skeleton sender.
func (f *Flowgen) LoadPacket(n int, cfg packet.Config) error {
	g, err := f.flow(n)
	if err != nil {
		return err
	}
	s, ok := g.ModifierByType(modifier.TypeSkeletonSender).(*modifier.SkeletonSender)
	if !ok {
		return fmt.Errorf("flow %d: skeleton sender: %w", n, ErrNotFound)
	}
	frame, err := packet.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build packet: %w", err)
	}
	if err := s.Data().SetUserValue(frame); err != nil {
		return err
	}
	s.Data().SetAuto(false)
	f.Logger.Info("packet loaded", zap.Int("flow", n), zap.Int("size", len(frame)))
	return nil
}
