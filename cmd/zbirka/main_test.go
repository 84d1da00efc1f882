package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.LocalFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRostersRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--config", filepath.Join(dir, "missing.yaml"), "--db", filepath.Join(dir, "test.sqlite3")}

	rostersFile := filepath.Join(dir, "rosters.txt")
	if err := os.WriteFile(rostersFile, []byte("main: A, B\npair:A\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, append(base, "rosters", "set", rostersFile)...); err != nil {
		t.Fatalf("rosters set: %v", err)
	}

	out, err := execute(t, append(base, "rosters")...)
	if err != nil {
		t.Fatalf("rosters: %v", err)
	}
	if strings.TrimSpace(out) != "main:A,B\npair:A" {
		t.Errorf("unexpected rosters output %q", out)
	}
}

func TestExportImportCommands(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "missing.yaml")
	backup := filepath.Join(dir, "backup.json")

	src := []string{"--config", config, "--db", filepath.Join(dir, "src.sqlite3")}
	if _, err := execute(t, append(src, "export", "-o", backup)...); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}

	dst := []string{"--config", config, "--db", filepath.Join(dir, "dst.sqlite3")}
	if _, err := execute(t, append(dst, "import", backup)...); err != nil {
		t.Fatalf("import: %v", err)
	}

	garbage := filepath.Join(dir, "garbage.json")
	os.WriteFile(garbage, []byte("{nope"), 0644)
	if _, err := execute(t, append(dst, "import", garbage)...); err == nil {
		t.Error("expected import of a broken document to fail")
	}
}

func TestTradeRejectsBadIndex(t *testing.T) {
	dir := t.TempDir()
	args := []string{"--config", filepath.Join(dir, "missing.yaml"), "--db", filepath.Join(dir, "t.sqlite3"), "trade", "x", "first"}
	if _, err := execute(t, args...); err == nil {
		t.Error("expected error for non-numeric index")
	}
}

func TestUnknownBackendRejected(t *testing.T) {
	dir := t.TempDir()
	args := []string{"--config", filepath.Join(dir, "missing.yaml"), "--backend", "postgres", "series"}
	if _, err := execute(t, args...); err == nil {
		t.Error("expected unknown backend to be rejected")
	}
}
