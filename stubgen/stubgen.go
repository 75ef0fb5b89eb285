// Package stubgen generates the Go source for a trampoline table.
//
// Every slot in the manifest becomes one Go function with a fixed native
// shape. The function packs its arguments into raw 64-bit words and hands
// them, together with its slot index, to the dispatcher bound to the table.
// Slots of one family are emitted next to each other in manifest order, which
// the registry relies on when it advances a family's cursor.
package stubgen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/revcall/manifest"
	"github.com/chazu/revcall/sig"
)

const (
	dispatchPath   = "github.com/chazu/revcall/dispatch"
	nativePath     = "github.com/chazu/revcall/native"
	trampolinePath = "github.com/chazu/revcall/trampoline"
)

// Generate renders the trampoline table described by m.
func Generate(m *manifest.Manifest) (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("stubgen: invalid manifest: %w", err)
	}
	pkg := m.Generator.Package
	if pkg == "" {
		pkg = "stubs"
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by trampgen from " + manifest.FileName + ". DO NOT EDIT.")
	f.ImportName(dispatchPath, "dispatch")
	f.ImportName(nativePath, "native")
	f.ImportName(trampolinePath, "trampoline")

	total := m.Total()
	writePrelude(f, total)

	slot := 0
	var rows []jen.Code
	for _, fam := range m.Families {
		sh, err := sig.Parse(fam.Signature)
		if err != nil {
			return "", fmt.Errorf("stubgen: %w", err)
		}
		f.Commentf("%s: slots %d-%d", fam.Signature, slot, slot+fam.Count-1)
		for i := 0; i < fam.Count; i++ {
			name := fmt.Sprintf("t%d", slot)
			writeTrampoline(f, name, slot, sh)
			rows = append(rows, jen.List(
				jen.Id("signatures").Index(jen.Lit(slot)),
				jen.Id("funcs").Index(jen.Lit(slot)),
			).Op("=").List(jen.Lit(fam.Signature), jen.Id(name)))
			slot++
		}
		f.Line()
	}

	f.Func().Id("init").Params().Block(rows...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("stubgen: render: %w", err)
	}
	return buf.String(), nil
}

func writePrelude(f *jen.File, total int) {
	f.Comment("Count is the number of trampolines in this table.")
	f.Const().Id("Count").Op("=").Lit(total)
	f.Line()

	f.Var().Defs(
		jen.Id("signatures").Index(jen.Id("Count")).String(),
		jen.Id("funcs").Index(jen.Id("Count")).Interface(),
		jen.Id("dispatcher").Qual("sync/atomic", "Pointer").Types(jen.Qual(dispatchPath, "Dispatcher")),
	)
	f.Line()

	f.Comment("Bind routes every trampoline in this table to d.")
	f.Func().Id("Bind").Params(jen.Id("d").Op("*").Qual(dispatchPath, "Dispatcher")).Block(
		jen.Id("dispatcher").Dot("Store").Call(jen.Id("d")),
	)
	f.Line()

	f.Comment("Stubs exports every trampoline as a native entry point and returns")
	f.Comment("the table in slot order.")
	f.Func().Id("Stubs").Params().Params(
		jen.Index().Qual(trampolinePath, "Stub"), jen.Error(),
	).Block(
		jen.Return(jen.Qual(nativePath, "ExportTable").Call(
			jen.Id("signatures").Index(jen.Op(":")),
			jen.Id("funcs").Index(jen.Op(":")),
		)),
	)
	f.Line()

	f.Func().Id("call").Params(jen.Id("slot").Int(), jen.Id("args").Op("...").Uint64()).Uint64().Block(
		jen.Return(jen.Id("dispatcher").Dot("Load").Call().Dot("Call").Call(jen.Id("slot"), jen.Id("args").Op("..."))),
	)
	f.Line()
}

func writeTrampoline(f *jen.File, name string, slot int, sh sig.Shape) {
	params := make([]jen.Code, len(sh.Params))
	args := []jen.Code{jen.Lit(slot)}
	for i, code := range sh.Params {
		arg := fmt.Sprintf("a%d", i)
		params[i] = jen.Id(arg).Add(goType(code))
		args = append(args, toWord(code, jen.Id(arg)))
	}
	call := jen.Id("call").Call(args...)

	if sh.Return == sig.CodeVoid {
		f.Func().Id(name).Params(params...).Block(call)
		return
	}
	f.Func().Id(name).Params(params...).Add(goType(sh.Return)).Block(
		jen.Return(fromWord(sh.Return, call)),
	)
}

// goType maps a shape code to the Go type a native callback receives.
func goType(code string) *jen.Statement {
	switch code {
	case sig.CodeI1:
		return jen.Int8()
	case sig.CodeU1:
		return jen.Uint8()
	case sig.CodeI2:
		return jen.Int16()
	case sig.CodeU2:
		return jen.Uint16()
	case sig.CodeI4:
		return jen.Int32()
	case sig.CodeU4:
		return jen.Uint32()
	case sig.CodeI8:
		return jen.Int64()
	case sig.CodeU8:
		return jen.Uint64()
	case sig.CodeR4:
		return jen.Float32()
	case sig.CodeR8:
		return jen.Float64()
	}
	// i, u
	return jen.Uintptr()
}

func toWord(code string, v jen.Code) jen.Code {
	switch code {
	case sig.CodeR4:
		return jen.Uint64().Call(jen.Qual("math", "Float32bits").Call(v))
	case sig.CodeR8:
		return jen.Qual("math", "Float64bits").Call(v)
	case sig.CodeU8:
		return v
	}
	return jen.Uint64().Call(v)
}

func fromWord(code string, w jen.Code) jen.Code {
	switch code {
	case sig.CodeR4:
		return jen.Qual("math", "Float32frombits").Call(jen.Uint32().Call(w))
	case sig.CodeR8:
		return jen.Qual("math", "Float64frombits").Call(w)
	case sig.CodeU8:
		return w
	}
	return goType(code).Call(w)
}
