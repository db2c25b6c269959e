// Command gen-manpages writes the hakija reference documentation: man pages
// by default, or Markdown pages with -markdown.
//
// Usage:
//
//	go run ./scripts/gen-manpages [-markdown] [output-dir]
//
// The default output directory is "man/man1", or "docs/cli" for Markdown.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/cli"
)

func main() {
	markdown := flag.Bool("markdown", false, "write Markdown instead of man pages")
	flag.Parse()

	outDir := "man/man1"
	if *markdown {
		outDir = "docs/cli"
	}
	if flag.NArg() > 0 {
		outDir = flag.Arg(0)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir %q: %v\n", outDir, err)
		os.Exit(1)
	}

	root := cli.NewRootCmd()
	root.DisableAutoGenTag = true

	var err error
	if *markdown {
		err = doc.GenMarkdownTree(root, outDir)
	} else {
		err = doc.GenManTree(root, &doc.GenManHeader{
			Title:   "HAKIJA",
			Section: "1",
			Source:  "hakija",
			Manual:  "hakija manual",
		}, outDir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reference docs generated in %s/\n", outDir)
}
