package native

import (
	"errors"
	"runtime"
	"testing"
)

func TestExportTableLengthMismatch(t *testing.T) {
	_, err := ExportTable([]string{"v()"}, nil)
	if err == nil {
		t.Fatal("ExportTable accepted mismatched lengths")
	}
}

func TestExportTableEmpty(t *testing.T) {
	stubs, err := ExportTable(nil, nil)
	if err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	if len(stubs) != 0 {
		t.Errorf("len(stubs) = %d, want 0", len(stubs))
	}
}

func TestExport(t *testing.T) {
	if !Supported {
		if _, err := Export(func() {}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Export error = %v, want ErrUnsupported", err)
		}
		return
	}
	stubs, err := ExportTable(
		[]string{"v(i4)", "i8(i,i8)"},
		[]any{func(int32) {}, func(uintptr, int64) int64 { return 0 }},
	)
	if err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	if stubs[0].Entry == 0 || stubs[1].Entry == 0 || stubs[0].Entry == stubs[1].Entry {
		t.Errorf("bad entry points %s, %s", stubs[0].Entry, stubs[1].Entry)
	}
	if stubs[1].Signature != "i8(i,i8)" {
		t.Errorf("Signature = %q", stubs[1].Signature)
	}
}

func TestExportFloatShape(t *testing.T) {
	if !Supported || runtime.GOOS == "windows" {
		t.Skip("float callback arguments need a System V or darwin ABI")
	}
	stubs, err := ExportTable([]string{"r8(r8)"}, []any{func(x float64) float64 { return x }})
	if err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	if stubs[0].Entry == 0 {
		t.Error("zero entry point for r8(r8)")
	}
}

func TestExportRejectsNonFunc(t *testing.T) {
	if !Supported {
		t.Skip("callbacks are not supported on " + runtime.GOOS + "/" + runtime.GOARCH)
	}
	if _, err := Export(42); err == nil {
		t.Error("Export accepted a non-function")
	}
}
