// Command gen-completions writes the hakija shell completion scripts to an
// output directory, one file per supported shell.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/cli"
)

type generator func(root *cobra.Command, w io.Writer) error

var shells = []struct {
	file string
	gen  generator
}{
	{"hakija.bash", func(c *cobra.Command, w io.Writer) error { return c.GenBashCompletionV2(w, true) }},
	{"_hakija", func(c *cobra.Command, w io.Writer) error { return c.GenZshCompletion(w) }},
	{"hakija.fish", func(c *cobra.Command, w io.Writer) error { return c.GenFishCompletion(w, true) }},
	{"hakija.ps1", func(c *cobra.Command, w io.Writer) error { return c.GenPowerShellCompletionWithDesc(w) }},
}

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		fmt.Fprintln(os.Stderr, "gen-completions:", err)
		os.Exit(1)
	}
	fmt.Printf("All completions written to %s/\n", outDir)
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}
	root := cli.NewRootCmd()
	for _, sh := range shells {
		path := filepath.Join(outDir, sh.file)
		if err := writeFile(path, func(w io.Writer) error { return sh.gen(root, w) }); err != nil {
			return err
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}

func writeFile(path string, gen func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	if err := gen(f); err != nil {
		f.Close()
		return fmt.Errorf("generating %q: %w", path, err)
	}
	return f.Close()
}
