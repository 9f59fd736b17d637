package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"go.nifc.dev/nif"
	"go.nifc.dev/nif/nifx"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Recompute a module's index and diff it against the on-disk .index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

func runCheck(path string) error {
	m, err := nifx.LoadFile(path)
	if err != nil {
		return err
	}
	dumpDebug(path, m)

	fresh, err := recomputeIndex(m)
	if err != nil {
		return err
	}

	var onDisk []nif.IndexEntry
	if m.Index != nil {
		onDisk = m.Index.Entries
	}

	if diff := cmp.Diff(onDisk, fresh); diff != "" {
		color.Red("%s: index mismatch:\n%s", path, diff)
		return fmt.Errorf("index mismatch in %s", path)
	}

	color.Green("%s: index OK (%d entries)", path, len(fresh))
	return nil
}

// recomputeIndex writes m with a freshly built index into memory, then
// re-reads that output's .index to get entries with current offsets,
// without touching the original file.
func recomputeIndex(m *nif.Module) ([]nif.IndexEntry, error) {
	sink := &memSeeker{}
	wr := nif.NewWriter(nif.WriteOptions{WriteIndex: true})
	if err := wr.Write(sink, m); err != nil {
		return nil, err
	}

	p := nif.NewParser()
	rebuilt, err := p.ParseSuffix(sink.buf, "check.nif", m.Suffix)
	if err != nil {
		return nil, err
	}
	if rebuilt.Index == nil {
		return nil, nil
	}
	return rebuilt.Index.Entries, nil
}
