// Package console renders the user-facing terminal output: banner, progress bar,
// error lines and the run summary. Color is a property of the Printer value.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/xkilldash9x/tgcontacts/internal/contacts"
)

// ANSI color codes for the terminal.
const (
	colorGreen  = "\033[92m"
	colorCyan   = "\033[96m"
	colorYellow = "\033[93m"
	colorRed    = "\033[91m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

const banner = `
╔════════════════════════════════════════════╗
║ Telegram Contacts → Android Import Tool    ║
║        Convert to CSV or VCF               ║
╚════════════════════════════════════════════╝
`

// progressWidth is the number of cells in the progress bar.
const progressWidth = 25

// Printer writes presentation output to Out.
type Printer struct {
	Out   io.Writer
	Color bool
}

// New returns a Printer over out.
func New(out io.Writer, color bool) *Printer {
	return &Printer{Out: out, Color: color}
}

func (p *Printer) paint(text, code string) string {
	if !p.Color {
		return text
	}
	return code + text + colorReset
}

func (p *Printer) line(text, code string) {
	fmt.Fprintln(p.Out, p.paint(text, code))
}

// Banner prints the tool banner.
func (p *Printer) Banner() {
	for _, l := range strings.Split(banner, "\n") {
		p.line(l, colorCyan)
	}
}

// Error prints a failure line.
func (p *Printer) Error(msg string) {
	p.line("✖ "+msg, colorRed)
}

// Progress redraws the progress bar in place for done out of total.
func (p *Printer) Progress(done, total int) {
	if total <= 0 {
		return
	}
	percent := done * 100 / total
	bar := strings.Repeat("#", percent/4)
	fmt.Fprintf(p.Out, "\rProcessing: [%-*s] %d%%", progressWidth, bar, percent)
}

// EndProgress terminates the progress line.
func (p *Printer) EndProgress() {
	fmt.Fprintln(p.Out)
}

// Summary prints the counters of a finished run and where the output went.
func (p *Printer) Summary(sum contacts.Summary, outputPath string) {
	p.line("\n✔ Conversion complete\n", colorGreen)
	p.line("[+] Summary", colorBold)
	p.line(fmt.Sprintf("• Input contacts        : %d", sum.Total), colorCyan)
	p.line(fmt.Sprintf("• Written contacts      : %d", sum.Written), colorCyan)
	p.line(fmt.Sprintf("• Duplicates removed    : %d", sum.Duplicates), colorYellow)
	p.line(fmt.Sprintf("• 00 → + normalized     : %d", sum.Normalized00), colorCyan)
	p.line(fmt.Sprintf("• Country normalized    : %d", sum.NormalizedCountry), colorCyan)
	p.line(fmt.Sprintf("• Output format         : %s", strings.ToUpper(string(sum.Format))), colorCyan)
	p.line(fmt.Sprintf("\n[-] Output file: %s\n", outputPath), colorGreen)
}
