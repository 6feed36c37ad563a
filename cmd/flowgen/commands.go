package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"

	"github.com/takehaya/flowgen/pkg/flowgen"
	"github.com/takehaya/flowgen/pkg/packet"
)

// intArgs parses the first n positional arguments as integers.
func intArgs(c *cli.Context, n int) ([]int, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", c.Command.Name, n, c.NArg())
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(c.Args().Get(i))
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", c.Command.Name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func setEnabled(enabled bool) func(f *flowgen.Flowgen, c *cli.Context) error {
	return func(f *flowgen.Flowgen, c *cli.Context) error {
		args, err := intArgs(c, 1)
		if err != nil {
			return err
		}
		if c.NArg() == 1 {
			return f.SetFlowEnabled(args[0], enabled)
		}
		args, err = intArgs(c, 2)
		if err != nil {
			return err
		}
		return f.SetModifierEnabled(args[0], args[1], enabled)
	}
}

func commands() []cli.Command {
	defaultPacket := packet.DefaultConfig()
	return []cli.Command{
		{
			Name:  "export",
			Usage: "write the hardware configuration text",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Usage: "output file, default is stdout"},
			},
			Action: withFlowgen(false, func(f *flowgen.Flowgen, c *cli.Context) error {
				return f.Export(c.String("output"))
			}),
		},
		{
			Name:  "show",
			Usage: "list flows, modifiers and field values",
			Action: withFlowgen(false, func(f *flowgen.Flowgen, c *cli.Context) error {
				return f.Show(os.Stdout)
			}),
		},
		{
			Name:      "set",
			Usage:     "set the user value of a field",
			ArgsUsage: "FLOW MODIFIER FIELD VALUE",
			Action: withFlowgen(true, func(f *flowgen.Flowgen, c *cli.Context) error {
				args, err := intArgs(c, 2)
				if err != nil {
					return err
				}
				if c.NArg() != 4 {
					return fmt.Errorf("set: expected FLOW MODIFIER FIELD VALUE")
				}
				return f.Set(args[0], args[1], c.Args().Get(2), c.Args().Get(3))
			}),
		},
		{
			Name:      "auto",
			Usage:     "give a field back its automatic value",
			ArgsUsage: "FLOW MODIFIER FIELD",
			Action: withFlowgen(true, func(f *flowgen.Flowgen, c *cli.Context) error {
				args, err := intArgs(c, 2)
				if err != nil {
					return err
				}
				if c.NArg() != 3 {
					return fmt.Errorf("auto: expected FLOW MODIFIER FIELD")
				}
				return f.Auto(args[0], args[1], c.Args().Get(2))
			}),
		},
		{
			Name:      "enable",
			Usage:     "enable a flow, or one of its modifiers",
			ArgsUsage: "FLOW [MODIFIER]",
			Action:    withFlowgen(true, setEnabled(true)),
		},
		{
			Name:      "disable",
			Usage:     "disable a flow, or one of its modifiers",
			ArgsUsage: "FLOW [MODIFIER]",
			Action:    withFlowgen(true, setEnabled(false)),
		},
		{
			Name:      "flow",
			Usage:     "set the description of a flow",
			ArgsUsage: "FLOW",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "description, D", Usage: "multi-line description, empty to clear"},
			},
			Action: withFlowgen(true, func(f *flowgen.Flowgen, c *cli.Context) error {
				args, err := intArgs(c, 1)
				if err != nil {
					return err
				}
				return f.SetFlowDescription(args[0], c.String("description"))
			}),
		},
		{
			Name:      "packet",
			Usage:     "load an Ethernet/IPv4/UDP frame into the skeleton sender of a flow",
			ArgsUsage: "FLOW",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "src-mac", Value: defaultPacket.SrcMAC},
				cli.StringFlag{Name: "dst-mac", Value: defaultPacket.DstMAC},
				cli.StringFlag{Name: "src-ip", Value: defaultPacket.SrcIP},
				cli.StringFlag{Name: "dst-ip", Value: defaultPacket.DstIP},
				cli.UintFlag{Name: "src-port", Value: uint(defaultPacket.SrcPort)},
				cli.UintFlag{Name: "dst-port", Value: uint(defaultPacket.DstPort)},
				cli.UintFlag{Name: "ttl", Value: uint(defaultPacket.TTL)},
				cli.IntFlag{Name: "size", Value: defaultPacket.Size, Usage: "frame size including FCS"},
				cli.StringFlag{Name: "fill", Value: defaultPacket.Fill, Usage: "payload pattern"},
			},
			Action: withFlowgen(true, func(f *flowgen.Flowgen, c *cli.Context) error {
				args, err := intArgs(c, 1)
				if err != nil {
					return err
				}
				if c.Uint("src-port") > 0xFFFF || c.Uint("dst-port") > 0xFFFF || c.Uint("ttl") > 0xFF {
					return fmt.Errorf("packet: port or ttl out of range")
				}
				return f.LoadPacket(args[0], packet.Config{
					SrcMAC:  c.String("src-mac"),
					DstMAC:  c.String("dst-mac"),
					SrcIP:   c.String("src-ip"),
					DstIP:   c.String("dst-ip"),
					SrcPort: uint16(c.Uint("src-port")),
					DstPort: uint16(c.Uint("dst-port")),
					TTL:     uint8(c.Uint("ttl")),
					Size:    c.Int("size"),
					Fill:    c.String("fill"),
				})
			}),
		},
		{
			Name:  "reset",
			Usage: "put every flow back to its defaults",
			Action: withFlowgen(true, func(f *flowgen.Flowgen, c *cli.Context) error {
				f.Reset()
				return nil
			}),
		},
	}
}
