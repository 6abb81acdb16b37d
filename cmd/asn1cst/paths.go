package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golangsnmp/asn1cst"
)

const pathsUsage = `asn1cst paths - Show ASN.1 search paths

Usage:
  asn1cst paths [options]

Shows the ASN.1 search paths that would be used. When -p paths are
specified, shows those. Otherwise shows the system paths: ~/.asn1,
/usr/share/asn1 and /usr/local/share/asn1, then the "path" lines of
/etc/asn1cst.conf and ~/.asn1cstrc, then ` + asn1cst.PathEnv + `.

Options:
  --files      List the files in each path instead
  -h, --help   Show help

Examples:
  asn1cst paths
  asn1cst paths --files -p testdata/corpus
  ` + asn1cst.PathEnv + `=+/opt/asn1 asn1cst paths
`

func (c *cli) cmdPaths(args []string) int {
	fs := flag.NewFlagSet("paths", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, pathsUsage) }

	files := fs.Bool("files", false, "list files")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, pathsUsage)
		return exitOK
	}

	var paths []string
	if len(c.paths) > 0 {
		paths = c.paths
	} else {
		paths = asn1cst.DiscoverSystemPaths(c.setupLogger())
	}

	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no search paths found")
		return exitOK
	}

	for _, p := range paths {
		fmt.Println(p)
		if !*files {
			continue
		}
		src, err := asn1cst.DirTree(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot access path %s: %v\n", p, err)
			continue
		}
		list, err := src.ListFiles()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot list path %s: %v\n", p, err)
			continue
		}
		for _, f := range list {
			fmt.Printf("  %s\n", f)
		}
	}
	return exitOK
}
