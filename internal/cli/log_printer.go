package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

// LogPrinter prints log lines, coloring them by level when writing to a terminal
type LogPrinter struct {
	out        io.Writer
	color      bool
	classifier *logs.Classifier
}

// NewLogPrinter creates a new LogPrinter
func NewLogPrinter(out io.Writer, patterns logs.LevelPatterns) *LogPrinter {
	return &LogPrinter{
		out:        out,
		color:      colorEnabled(out),
		classifier: logs.NewClassifier(patterns),
	}
}

// PrintRecord prints a record as "<timestamp> <message>"
func (lp *LogPrinter) PrintRecord(r domain.LogRecord) {
	if !lp.color {
		fmt.Fprintln(lp.out, r.String())
		return
	}
	fmt.Fprintf(lp.out, "%s%s%s %s\n", constants.ColorDim, r.TimestampText, constants.ColorReset, lp.colorize(r.Message))
}

// PrintLine prints a raw line as the backend sent it
func (lp *LogPrinter) PrintLine(line string) {
	if !lp.color {
		fmt.Fprintln(lp.out, line)
		return
	}
	fmt.Fprintln(lp.out, lp.colorize(line))
}

func (lp *LogPrinter) colorize(s string) string {
	color, ok := constants.LevelColors[lp.classifier.Classify(s).String()]
	if !ok {
		return s
	}
	return color + s + constants.ColorReset
}

// colorEnabled reports whether out is a terminal and NO_COLOR is unset
func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
