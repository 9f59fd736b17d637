package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"go.nifc.dev/nif"
)

// dumpDebug prints m via kr/pretty to stderr, matching the teacher demo's
// --debug dump of a parsed document.
func dumpDebug(path string, m *nif.Module) {
	if !debug {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %# v\n------------------------------------------------------------------------\n",
		path, pretty.Formatter(m))
	os.Stderr.Sync()
}
