package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.nifc.dev/nif"
	"go.nifc.dev/nif/nifx"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <file>",
		Short: "Print the canonical identifier encoding of each top-level node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(args[0])
		},
	}
}

func runEncode(path string) error {
	m, err := nifx.LoadFile(path)
	if err != nil {
		return err
	}
	dumpDebug(path, m)

	for i, ref := range m.Body {
		fmt.Printf("%d: %s\n", i, nif.Encode(m.Arena, ref))
	}
	return nil
}
