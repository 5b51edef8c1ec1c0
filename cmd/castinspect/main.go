package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"castkit/internal/cast"
	"castkit/internal/dump"
	"castkit/internal/skeleton"
)

func main() {
	format := flag.String("format", dump.FormatText, "Output format: text, json or yaml")
	maxValues := flag.Int("max", dump.DefaultMaxValues, "Array values shown per property (-1 for all)")
	bones := flag.Bool("bones", false, "Print resolved world transforms for every skeleton")
	check := flag.Bool("check", false, "Re-encode each file and compare with the input bytes")
	strict := flag.Bool("strict", false, "Treat node length mismatches as errors")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: castinspect [flags] file.cast...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	color.NoColor = *noColor || !isatty.IsTerminal(os.Stdout.Fd())
	pal := dump.Palette{
		Kind: color.New(color.FgCyan, color.Bold).SprintFunc(),
		Name: color.New(color.FgYellow).SprintFunc(),
		Ref:  color.New(color.FgGreen).SprintFunc(),
	}

	dec := &cast.Decoder{
		Strict: *strict,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := inspect(dec, path, *format, *maxValues, *bones, *check, pal); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspect(dec *cast.Decoder, path, format string, maxValues int, bones, check bool, pal dump.Palette) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := dec.Decode(data)
	if err != nil {
		return err
	}

	if format == dump.FormatText && flag.NArg() > 1 {
		fmt.Printf("=== %s (%d bytes, version %d) ===\n", path, len(data), doc.Version)
	}
	if err := dump.Write(os.Stdout, dump.Build(doc, dump.Options{MaxValues: maxValues}), format, pal); err != nil {
		return err
	}

	if bones {
		for i, model := range doc.Models() {
			skel, ok := model.Skeleton()
			if !ok {
				continue
			}
			if err := printBones(i, skel, pal); err != nil {
				return err
			}
		}
	}

	if check {
		again, err := doc.Encode()
		if err != nil {
			return fmt.Errorf("re-encode: %w", err)
		}
		if !bytes.Equal(data, again) {
			return fmt.Errorf("re-encode differs: %d bytes in, %d bytes out", len(data), len(again))
		}
		fmt.Printf("%s: re-encode identical (%d bytes)\n", path, len(data))
	}
	return nil
}

func printBones(model int, skel *cast.Skeleton, pal dump.Palette) error {
	poses, err := skeleton.BuildWorldMatrices(skel)
	if err != nil {
		return err
	}
	fmt.Printf("--- model %d skeleton (%d bones) ---\n", model, len(poses))
	for i, p := range poses {
		pos := p.Position()
		rot := p.Rotation()
		src := "chained"
		if p.Stored {
			src = "stored"
		}
		fmt.Printf("  [%3d] %-24s parent=%-4d pos=(%.4f, %.4f, %.4f) rot=(%.4f, %.4f, %.4f, %.4f) %s\n",
			i, pal.Name(p.Name), p.Parent, pos[0], pos[1], pos[2], rot[0], rot[1], rot[2], rot[3], src)
	}
	return nil
}
