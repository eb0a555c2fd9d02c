// Package console holds the small line-oriented helpers shared by the
// interactive flows.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgCyan)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

func WriteLine(out io.Writer, msg string) {
	_, _ = fmt.Fprintln(out, msg)
}

func Writef(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, format, args...)
}

// Success, Warn and Fail print one coloured line. Colour is dropped when
// stdout is not a terminal or NO_COLOR is set.
func Success(out io.Writer, format string, args ...any) {
	_, _ = okColor.Fprintf(out, format+"\n", args...)
}

func Warn(out io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(out, format+"\n", args...)
}

func Fail(out io.Writer, format string, args ...any) {
	_, _ = failColor.Fprintf(out, format+"\n", args...)
}

// Prompter asks questions on out and reads single-line answers from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the next input line without surrounding
// whitespace. It returns io.EOF once input is exhausted.
func (p *Prompter) Ask(question string) (string, error) {
	Writef(p.out, "%s", question)
	if !p.scanner.Scan() {
		WriteLine(p.out, "")
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}
