package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.nifc.dev/nif"
	"go.nifc.dev/nif/nifx"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <file>",
		Short: "Rewrite a module in place with a freshly computed index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(args[0])
		},
	}
}

func runWrite(path string) error {
	var dumped *nif.Module
	err := nifx.Rewrite(path, nif.WriteOptions{WriteIndex: true}, func(m *nif.Module) error {
		dumped = m
		return nil
	})
	if err != nil {
		return err
	}
	dumpDebug(path, dumped)
	color.Green("%s: rewritten", path)
	return nil
}
