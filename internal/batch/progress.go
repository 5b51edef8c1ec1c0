package batch

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ProgressWriter returns f when it is an interactive terminal and nil
// otherwise, so redirected runs stay free of progress lines.
func ProgressWriter(f *os.File) io.Writer {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return f
	}
	return nil
}
