package nifx

import (
	"context"

	"go.nifc.dev/nif"
	"golang.org/x/sync/errgroup"
)

// LoadModules parses every path concurrently, demonstrating that the
// parser performs no internal I/O scheduling of its own: independent files
// have independent trees and nothing about parsing one depends on another.
//
// It returns a map keyed by path on success, or the first error
// encountered. Loads already started are not cancelled on that error; they
// run to completion and their results are discarded.
func LoadModules(paths []string) (map[string]*nif.Module, error) {
	modules := make(map[string]*nif.Module, len(paths))
	results := make([]*nif.Module, len(paths))

	g, _ := errgroup.WithContext(context.Background())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			m, err := LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, path := range paths {
		modules[path] = results[i]
	}
	return modules, nil
}
