// Package flow chains the enabled modifiers of one traffic flow.
package flow

import (
	"strings"

	"go.uber.org/multierr"

	"github.com/takehaya/flowgen/pkg/event"
	"github.com/takehaya/flowgen/pkg/modifier"
)

const (
	// markerLast frames the block of the last enabled modifier.
	markerLast = "FFFFFFFF\nFFFFFFFF\n$\n"
	markerNext = "00000000\n00000000\n$\n"
	blockEnd   = "\n#\n"
)

// Generator is one flow: an ordered list of modifiers the hardware applies
// to every generated packet.
type Generator struct {
	enabled     bool
	description string
	modifiers   []modifier.Modifier

	enabledChanged     event.Channel[*Generator]
	descriptionChanged event.Channel[*Generator]
}

// New returns an empty, disabled flow.
func New() *Generator {
	return &Generator{}
}

func (g *Generator) Enabled() bool { return g.enabled }

func (g *Generator) SetEnabled(enabled bool) {
	if enabled == g.enabled {
		return
	}
	g.enabled = enabled
	g.enabledChanged.Publish(g)
}

func (g *Generator) Description() string { return g.description }

func (g *Generator) SetDescription(description string) {
	if description == g.description {
		return
	}
	g.description = description
	g.descriptionChanged.Publish(g)
}

func (g *Generator) EnabledChanged() *event.Channel[*Generator]     { return &g.enabledChanged }
func (g *Generator) DescriptionChanged() *event.Channel[*Generator] { return &g.descriptionChanged }

// AddModifier appends m. Modifier identifiers are unique within a flow.
func (g *Generator) AddModifier(m modifier.Modifier) error {
	if g.Modifier(m.ID()) != nil {
		return &modifier.ModifierError{
			Modifier: m.Name(),
			ID:       m.ID(),
			Message:  "The identifier is already used in this flow.",
			Err:      modifier.ErrDuplicateID,
		}
	}
	g.modifiers = append(g.modifiers, m)
	return nil
}

// Modifier returns the modifier with identifier id, or nil.
func (g *Generator) Modifier(id int) modifier.Modifier {
	for _, m := range g.modifiers {
		if m.ID() == id {
			return m
		}
	}
	return nil
}

// ModifierByType returns the first modifier of type tag, or nil.
func (g *Generator) ModifierByType(tag string) modifier.Modifier {
	for _, m := range g.modifiers {
		if m.Type() == tag {
			return m
		}
	}
	return nil
}

func (g *Generator) Modifiers() []modifier.Modifier {
	return append([]modifier.Modifier(nil), g.modifiers...)
}

// EnabledModifiers returns the enabled modifiers in stored order.
func (g *Generator) EnabledModifiers() []modifier.Modifier {
	var out []modifier.Modifier
	for _, m := range g.modifiers {
		if m.Enabled() {
			out = append(out, m)
		}
	}
	return out
}

// ConfigData renders the chained blocks of the enabled modifiers. The block
// of the last enabled modifier is framed with the all-ones marker, every
// other block with the all-zeros one.
func (g *Generator) ConfigData() string {
	mods := g.EnabledModifiers()
	blocks := make([]string, len(mods))
	for i := len(mods) - 1; i >= 0; i-- {
		marker := markerNext
		if i == len(mods)-1 {
			marker = markerLast
		}
		blocks[i] = marker + mods[i].ConfigData() + blockEnd
	}
	return strings.Join(blocks, "")
}

// Reset disables the flow, clears its description and resets every modifier.
func (g *Generator) Reset() {
	g.SetEnabled(false)
	g.SetDescription("")
	for _, m := range g.modifiers {
		m.Reset()
	}
}

// State is the persisted form of a flow.
type State struct {
	Enabled     bool             `yaml:"enabled"`
	Description string           `yaml:"description"`
	Modifiers   []modifier.State `yaml:"modifiers"`
}

func (g *Generator) State() State {
	s := State{Enabled: g.enabled, Description: g.description}
	for _, m := range g.modifiers {
		s.Modifiers = append(s.Modifiers, m.State())
	}
	return s
}

// Restore copies a persisted flow. Saved modifiers are matched by
// identifier; those missing from this flow are ignored. A modifier whose
// type changed, and fields that cannot take their saved value, are skipped
// and reported in the returned error.
func (g *Generator) Restore(s State) error {
	g.SetEnabled(s.Enabled)
	g.SetDescription(s.Description)
	var errs error
	for _, ms := range s.Modifiers {
		m := g.Modifier(ms.ID)
		if m == nil {
			continue
		}
		errs = multierr.Append(errs, m.Restore(ms))
	}
	return errs
}
