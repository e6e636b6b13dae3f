package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/dtng/devicetree"
	"github.com/dtng/devicetree/lib/fdtjson"
)

func newInspectCommand() *cobra.Command {
	var useSpew, useJSON bool
	var inType, inFile string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse a tree and dump its structure for debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(inFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", inFile, err)
			}

			var dt *devicetree.DeviceTree
			switch inType {
			case "dts":
				dt, err = devicetree.FromDTS(data, devicetree.ParseOptions{})
			case "dtb":
				dt, err = devicetree.FromDTB(data)
			default:
				return fmt.Errorf("unknown input type %q", inType)
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", inFile, err)
			}

			if useSpew {
				cfg := spew.NewDefaultConfig()
				cfg.DisablePointerAddresses = true
				cfg.Fdump(os.Stdout, dt)
			}
			if useJSON {
				out, err := fdtjson.Dump(dt.Tree, dt.Reservations, dt.BootCPUID)
				if err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Println(out)
			}
			if !useSpew && !useJSON {
				fmt.Print(dt.ToDTS())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inType, "in-type", "", "input format (dts|dtb)")
	cmd.Flags().StringVar(&inFile, "in-file", "", "input path")
	cmd.Flags().BoolVar(&useSpew, "spew", false, "dump the parsed tree structurally with go-spew")
	cmd.Flags().BoolVar(&useJSON, "json", false, "dump the parsed tree as JSON")
	for _, name := range []string{"in-type", "in-file"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}
