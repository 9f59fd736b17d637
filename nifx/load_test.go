package nifx

import (
	"os"
	"path/filepath"
	"testing"

	"go.nifc.dev/nif"
)

func writeTempModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempModule(t, dir, "sample.s.nif", `(.nif26)(stmts (call :write.1.sys))`)

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if m.Suffix != "sample" {
		t.Fatalf("Suffix = %q; want sample", m.Suffix)
	}
	if len(m.Body) != 1 {
		t.Fatalf("len(Body) = %d; want 1", len(m.Body))
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.nif")); err == nil {
		t.Fatalf("LoadFile(missing) succeeded; want error")
	}
}

func TestLoadModulesParallel(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTempModule(t, dir, "a.s.nif", `(.nif26)(stmts (call :a.0.m))`),
		writeTempModule(t, dir, "b.s.nif", `(.nif26)(stmts (call :b.0.m))`),
		writeTempModule(t, dir, "c.s.nif", `(.nif26)(stmts (call :c.0.m))`),
	}

	modules, err := LoadModules(paths)
	if err != nil {
		t.Fatalf("LoadModules error: %v", err)
	}
	if len(modules) != len(paths) {
		t.Fatalf("len(modules) = %d; want %d", len(modules), len(paths))
	}
	for _, p := range paths {
		if modules[p] == nil {
			t.Errorf("modules[%s] is nil", p)
		}
	}
}

func TestLoadModulesPropagatesFirstError(t *testing.T) {
	dir := t.TempDir()
	good := writeTempModule(t, dir, "good.s.nif", `(.nif26)(stmts (call :a.0.m))`)
	bad := filepath.Join(dir, "missing.s.nif")

	if _, err := LoadModules([]string{good, bad}); err == nil {
		t.Fatalf("LoadModules with a missing file succeeded; want error")
	}
}

func TestRewriteAddsIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeTempModule(t, dir, "idx.s.nif", `(.nif26)(stmts (call :a.0.m))`)

	err := Rewrite(path, nif.WriteOptions{WriteIndex: true}, func(m *nif.Module) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Rewrite error: %v", err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("re-LoadFile after Rewrite error: %v", err)
	}
	if m.Index == nil || len(m.Index.Entries) != 1 {
		t.Fatalf("Index = %+v; want one entry", m.Index)
	}
	if len(m.Warnings) != 0 {
		t.Fatalf("Warnings = %v; want none after a fresh rewrite", m.Warnings)
	}
}
