package flowgen

import (
	"io"

	"golang.org/x/text/message"

	"github.com/takehaya/flowgen/pkg/field"
)

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// Show prints every flow, modifier and editable field with its current
// value.
func (f *Flowgen) Show(w io.Writer) error {
	p := message.NewPrinter(message.MatchLanguage("en"))
	for i, g := range f.Hardware.Flows() {
		if _, err := p.Fprintf(w, "Flow %d (%s)\n", i+1, onOff(g.Enabled())); err != nil {
			return err
		}
		if d := g.Description(); d != "" {
			p.Fprintf(w, "  %q\n", d)
		}
		for _, m := range g.Modifiers() {
			p.Fprintf(w, "  [%d] %s (%s)\n", m.ID(), m.Name(), onOff(m.Enabled()))
			for _, fl := range m.Fields() {
				if !fl.Editable() {
					continue
				}
				mode := "user"
				if fl.Auto() {
					mode = "auto"
				}
				switch v := fl.(type) {
				case *field.Unsigned:
					p.Fprintf(w, "      %s = %d (%s)\n", fl.ID(), v.Value(), mode)
				case *field.WordBlock:
					p.Fprintf(w, "      %s = %d bytes (%s)\n", fl.ID(), fl.ByteSize(), mode)
				default:
					s, _ := fl.Display()
					p.Fprintf(w, "      %s = %s (%s)\n", fl.ID(), s, mode)
				}
			}
		}
	}
	return nil
}
