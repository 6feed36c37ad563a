package modifier

const TypeEthernetFCS = "ethernet_fcs"

func init() {
	MustRegister(TypeEthernetFCS, false, NewEthernetFCS)
}

// EthernetFCS has no field: enabling it is the whole configuration.
type EthernetFCS struct {
	*Base
}

func NewEthernetFCS(flow Flow, info Info, opts Options) (Modifier, error) {
	b, err := NewBase(flow, info, "Ethernet FCS", "Overrides the 4 last bytes of the packet with the computed Ethernet FCS value.", opts)
	if err != nil {
		return nil, err
	}
	m := &EthernetFCS{Base: b}
	b.bind(m)
	return m, nil
}
