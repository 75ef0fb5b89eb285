package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/revcall/manifest"
	"github.com/chazu/revcall/trampoline"
	"github.com/chazu/revcall/wire"
)

func TestPrintUsage(t *testing.T) {
	snap := &trampoline.Snapshot{
		RegistryID: "reg-1",
		Taken:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Slots:      4,
		Bound:      3,
		Families: []trampoline.FamilyUsage{
			{Signature: "i4(i4)", FirstSlot: 0, Capacity: 2, Bound: 2, Misses: 1},
			{Signature: "v()", FirstSlot: 2, Capacity: 2, Bound: 1},
			{Signature: "v(r8)", FirstSlot: -1, Misses: 3},
		},
	}

	var buf bytes.Buffer
	printUsage(&buf, snap)
	out := buf.String()

	if !strings.Contains(out, "registry reg-1 at 2024-05-01 12:00:00Z: 3 of 4 slots bound") {
		t.Errorf("missing header in:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
	if f := strings.Fields(lines[2]); len(f) != 5 || f[0] != "i4(i4)" || f[4] != "1!" {
		t.Errorf("exhausted row = %q", lines[2])
	}
	if f := strings.Fields(lines[4]); len(f) != 5 || f[1] != "-" || f[4] != "3!" {
		t.Errorf("unprovisioned row = %q", lines[4])
	}
}

func TestPrintChanges(t *testing.T) {
	var buf bytes.Buffer
	printChanges(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No families need more trampolines") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	printChanges(&buf, []manifest.Change{
		{Signature: "i4(i4)", From: 2, To: 4},
		{Signature: "v(r8)", To: 3},
	}, []string{"s8()"})
	want := "  ~ i4(i4): 2 -> 4\n  + v(r8): 3\n  skipped s8()\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestGrowRewritesManifest(t *testing.T) {
	dir := t.TempDir()
	toml := `[generator]
package = "stubs"

[[family]]
signature = "i4(i4)"
count = 2
`
	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	snapPath := filepath.Join(dir, "usage.cbor")
	err := wire.WriteFile(snapPath, &trampoline.Snapshot{
		RegistryID: "reg-1",
		Taken:      time.Now().UTC(),
		Slots:      2,
		Bound:      2,
		Families: []trampoline.FamilyUsage{
			{Signature: "i4(i4)", FirstSlot: 0, Capacity: 2, Bound: 2, Misses: 5},
			{Signature: "v(r8)", FirstSlot: -1, Misses: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if code := runGrow([]string{"-manifest", dir, snapPath}, &buf); code != 0 {
		t.Fatalf("runGrow exit %d, output:\n%s", code, buf.String())
	}

	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := m.Family("i4(i4)"); !ok || f.Count != 7 {
		t.Errorf("i4(i4) = %+v, %v; want count 7", f, ok)
	}
	if f, ok := m.Family("v(r8)"); !ok || f.Count != 1 {
		t.Errorf("v(r8) = %+v, %v; want count 1", f, ok)
	}
}

func TestGenerateWritesOutput(t *testing.T) {
	dir := t.TempDir()
	toml := `[[family]]
signature = "v()"
count = 1
`
	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := runGenerate([]string{"-manifest", dir, "-pkg", "tramps", "-o", "tramps_gen.go"}); code != 0 {
		t.Fatalf("runGenerate exit %d", code)
	}
	src, err := os.ReadFile(filepath.Join(dir, "tramps_gen.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "package tramps") {
		t.Errorf("generated file has wrong package:\n%s", src)
	}
}
