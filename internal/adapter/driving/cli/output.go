package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/ericfisherdev/classfeed/internal/application"
)

var (
	successColor = color.New(color.FgHiGreen)
	errorColor   = color.New(color.FgHiRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withSpinner runs fn while a spinner animates on the error stream. The
// spinner only runs when that stream is a terminal.
func (a *App) withSpinner(msg string, fn func() error) error {
	if !isTerminal(a.Err) {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.Err))
	s.Suffix = " " + msg
	s.Start()
	defer s.Stop()

	return fn()
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func printError(w io.Writer, err error) {
	_, _ = errorColor.Fprintln(w, "Error: "+errorText(err))
	if errors.Is(err, application.ErrNotSignedIn) {
		_, _ = mutedColor.Fprintln(w, "Run 'classfeed login' first.")
	}
}

// errorText prefers the user-facing message and falls back to the raw error
// for failures the application layer does not classify (flag parsing, I/O).
func errorText(err error) string {
	msg := application.UserMessage(err)
	if msg == application.GenericErrorMessage {
		return err.Error()
	}
	return msg
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetBorder(false)
	return table
}

// truncate shortens s to at most n runes, flattening newlines.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// promptLine asks for a line of input on the error stream.
func (a *App) promptLine(label string) (string, error) {
	_, _ = fmt.Fprint(a.Err, label)
	line, err := a.lineReader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) lineReader() *bufio.Reader {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	return a.reader
}

// promptPassword reads a password without echo when stdin is a terminal.
func (a *App) promptPassword() (string, error) {
	f, ok := a.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.promptLine("Password: ")
	}

	_, _ = fmt.Fprint(a.Err, "Password: ")
	pw, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(a.Err)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
