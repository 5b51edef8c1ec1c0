package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"castkit/internal/cast"
	"castkit/internal/dump"
)

func main() {
	maxValues := flag.Int("max", -1, "Array values compared per property (-1 for all)")
	all := flag.Bool("all", false, "Print unchanged lines too")
	strict := flag.Bool("strict", false, "Treat node length mismatches as errors")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: castdiff [flags] old.cast new.cast\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	color.NoColor = *noColor || !isatty.IsTerminal(os.Stdout.Fd())

	dec := &cast.Decoder{
		Strict: *strict,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	opts := dump.Options{MaxValues: *maxValues}

	var texts [2]string
	for i, path := range flag.Args() {
		doc, err := dec.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(2)
		}
		texts[i] = dump.Text(dump.Build(doc, opts))
	}

	lines := dump.Diff(texts[0], texts[1])
	if !dump.Changed(lines) {
		return
	}

	del := color.New(color.FgRed).SprintFunc()
	ins := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("--- %s\n+++ %s\n", flag.Arg(0), flag.Arg(1))
	for _, l := range lines {
		switch l.Op {
		case dump.OpDelete:
			fmt.Println(del("-" + l.Text))
		case dump.OpInsert:
			fmt.Println(ins("+" + l.Text))
		default:
			if *all {
				fmt.Println(" " + l.Text)
			}
		}
	}
	os.Exit(1)
}
