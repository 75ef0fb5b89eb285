package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/revcall/sig"
	"github.com/chazu/revcall/trampoline"
)

const sample = `
[generator]
package = "callbacks"
output = "gen/callbacks_gen.go"

[[family]]
signature = "v(i4)"
count = 2

[[family]]
signature = "i8(i,r8)"
count = 4
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Generator.Package != "callbacks" {
		t.Errorf("Package = %q, want callbacks", m.Generator.Package)
	}
	want := []Family{{"v(i4)", 2}, {"i8(i,r8)", 4}}
	if diff := cmp.Diff(want, m.Families); diff != "" {
		t.Errorf("Families mismatch (-want +got):\n%s", diff)
	}
	if m.Total() != 6 {
		t.Errorf("Total() = %d, want 6", m.Total())
	}
	if m.OutputPath() != filepath.Join(m.Dir, "gen", "callbacks_gen.go") {
		t.Errorf("OutputPath() = %q", m.OutputPath())
	}
	if f, ok := m.Family("i8(i,r8)"); !ok || f.Count != 4 {
		t.Errorf("Family(i8(i,r8)) = %+v, %v", f, ok)
	}
}

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte("[[family]]\nsignature = \"v()\"\ncount = 1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Generator.Package != "stubs" || m.Generator.Output != "stubs_gen.go" {
		t.Errorf("defaults not applied: %+v", m.Generator)
	}
}

func TestValidate(t *testing.T) {
	m := &Manifest{Families: []Family{
		{"v(i4)", 1},
		{"v(i4)", 2},
		{"bogus", 1},
		{"v(s8)", 1},
		{"i4()", 0},
	}}
	err := m.Validate()
	if err == nil {
		t.Fatal("Validate accepted an invalid manifest")
	}
	if !errors.Is(err, sig.ErrMalformed) {
		t.Errorf("error does not wrap sig.ErrMalformed: %v", err)
	}
	for _, want := range []string{"duplicate signature v(i4)", "by-value struct", "count must be at least 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("[generator]\npackage = \"stubs\"\n"))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Parse error = %v, want ErrEmpty", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad found nothing")
	}
	if m.Path() != filepath.Join(root, FileName) {
		t.Errorf("Path() = %q", m.Path())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := m.Save(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(m.Families, got.Families); diff != "" {
		t.Errorf("Families changed (-saved +loaded):\n%s", diff)
	}
	if got.Generator != m.Generator {
		t.Errorf("Generator = %+v, want %+v", got.Generator, m.Generator)
	}
}

func TestGrow(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	usage := []trampoline.FamilyUsage{
		{Signature: "i8(i,r8)", Capacity: 4, Bound: 1},
		{Signature: "v(i)", FirstSlot: -1, Misses: 3},
		{Signature: "v(i4)", Capacity: 2, Bound: 2, Misses: 5},
		{Signature: "v(s16)", FirstSlot: -1, Misses: 1},
	}

	changes, skipped := m.Grow(usage, 2)

	wantChanges := []Change{
		{Signature: "v(i)", From: 0, To: 3},
		{Signature: "v(i4)", From: 2, To: 7},
	}
	if diff := cmp.Diff(wantChanges, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"v(s16)"}, skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	wantFamilies := []Family{{"v(i4)", 7}, {"i8(i,r8)", 4}, {"v(i)", 3}}
	if diff := cmp.Diff(wantFamilies, m.Families); diff != "" {
		t.Errorf("families mismatch (-want +got):\n%s", diff)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("grown manifest invalid: %v", err)
	}
}
