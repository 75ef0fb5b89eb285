// Command trampgen generates trampoline tables from trampolines.toml and
// feeds run-time usage snapshots back into the manifest.
//
// Usage:
//
//	trampgen [-manifest dir] [-o out] [-pkg name]
//	trampgen usage <snapshot.cbor>
//	trampgen grow [-factor 2] [-manifest dir] <snapshot.cbor>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/revcall/manifest"
	"github.com/chazu/revcall/stubgen"
	"github.com/chazu/revcall/trampoline"
	"github.com/chazu/revcall/wire"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "usage":
			os.Exit(runUsage(args[1:], os.Stdout))
		case "grow":
			os.Exit(runGrow(args[1:], os.Stdout))
		}
	}
	os.Exit(runGenerate(args))
}

func runGenerate(args []string) int {
	fs := flag.NewFlagSet("trampgen", flag.ExitOnError)
	dir := fs.String("manifest", ".", "directory to search upward from for "+manifest.FileName)
	out := fs.String("o", "", "output file (overrides generator.output)")
	pkg := fs.String("pkg", "", "package name (overrides generator.package)")
	verbose := fs.Bool("v", false, "verbose output")
	fs.Parse(args)
	configureLogging(*verbose)

	m, err := loadManifest(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *pkg != "" {
		m.Generator.Package = *pkg
	}
	if *out != "" {
		m.Generator.Output = *out
	}

	src, err := stubgen.Generate(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	path := m.OutputPath()
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *verbose {
		fmt.Printf("Wrote %d trampolines in %d families to %s\n", m.Total(), len(m.Families), path)
	}
	return 0
}

func runUsage(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("trampgen usage", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: trampgen usage <snapshot.cbor>")
		return 2
	}

	snap, err := wire.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printUsage(w, snap)
	return 0
}

func runGrow(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("trampgen grow", flag.ExitOnError)
	dir := fs.String("manifest", ".", "directory to search upward from for "+manifest.FileName)
	factor := fs.Int("factor", 2, "growth factor for exhausted families")
	dryRun := fs.Bool("n", false, "print changes without writing the manifest")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: trampgen grow [-factor 2] [-manifest dir] <snapshot.cbor>")
		return 2
	}
	configureLogging(false)

	snap, err := wire.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	m, err := loadManifest(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	changes, skipped := m.Grow(snap.Families, *factor)
	printChanges(w, changes, skipped)
	if len(changes) == 0 || *dryRun {
		return 0
	}
	if err := m.Save(m.Path()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "Updated %s\n", m.Path())
	return 0
}

func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found in %s or any parent", manifest.FileName, dir)
	}
	return m, nil
}

func configureLogging(verbose bool) {
	if verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}
}

func printUsage(w io.Writer, snap *trampoline.Snapshot) {
	fmt.Fprintf(w, "registry %s at %s: %d of %d slots bound\n",
		snap.RegistryID, snap.Taken.Format("2006-01-02 15:04:05Z07:00"), snap.Bound, snap.Slots)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIGNATURE\tFIRST\tBOUND\tCAPACITY\tMISSES\t")
	for _, f := range snap.Families {
		first := "-"
		if f.FirstSlot >= 0 {
			first = fmt.Sprint(f.FirstSlot)
		}
		mark := ""
		if f.Misses > 0 {
			mark = "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d%s\t\n", f.Signature, first, f.Bound, f.Capacity, f.Misses, mark)
	}
	tw.Flush()
}

func printChanges(w io.Writer, changes []manifest.Change, skipped []string) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "No families need more trampolines")
	}
	for _, c := range changes {
		if c.From == 0 {
			fmt.Fprintf(w, "  + %s: %d\n", c.Signature, c.To)
		} else {
			fmt.Fprintf(w, "  ~ %s: %d -> %d\n", c.Signature, c.From, c.To)
		}
	}
	for _, s := range skipped {
		fmt.Fprintf(w, "  skipped %s\n", s)
	}
}
