package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorPass = lipgloss.Color("#2CD7C7")
	colorFail = lipgloss.Color("#E74C3C")
	colorRed  = lipgloss.Color("#D9534F")
)

// palette styles terminal output. Every style is a no-op unless the writer
// is an interactive terminal, so piped and captured output stays plain.
type palette struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Red   lipgloss.Style
}

func paletteFor(w io.Writer) palette {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return palette{Title: plain, Pass: plain, Fail: plain, Red: plain}
	}
	return palette{
		Title: lipgloss.NewStyle().Bold(true),
		Pass:  lipgloss.NewStyle().Bold(true).Foreground(colorPass),
		Fail:  lipgloss.NewStyle().Bold(true).Foreground(colorFail),
		Red:   lipgloss.NewStyle().Foreground(colorRed),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// status renders PASS or FAIL.
func (p palette) status(ok bool) string {
	if ok {
		return p.Pass.Render("PASS")
	}
	return p.Fail.Render("FAIL")
}
