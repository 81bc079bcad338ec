package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// VCFWriter emits one vCard 3.0 block per record, each followed by a blank line.
// Values are written verbatim; Android's importer accepts unescaped names.
type VCFWriter struct {
	sink   io.WriteCloser
	w      *bufio.Writer
	closed bool
}

// NewVCFWriter returns a VCFWriter over sink.
func NewVCFWriter(sink io.WriteCloser) *VCFWriter {
	return &VCFWriter{sink: sink, w: bufio.NewWriter(sink)}
}

// Card renders rec as a vCard block, including the trailing blank line.
func Card(rec Record) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	fmt.Fprintf(&b, "N:%s;%s;;;\n", rec.LastName, rec.FirstName)
	fmt.Fprintf(&b, "FN:%s\n", FormattedName(rec))
	fmt.Fprintf(&b, "TEL;TYPE=CELL:%s\n", rec.Phone)
	b.WriteString("END:VCARD\n\n")
	return b.String()
}

// FormattedName joins first and last name, trimmed so a missing half leaves
// no stray space.
func FormattedName(rec Record) string {
	return strings.TrimSpace(rec.FirstName + " " + rec.LastName)
}

// Write appends the card for rec.
func (v *VCFWriter) Write(rec Record) error {
	if _, err := v.w.WriteString(Card(rec)); err != nil {
		return fmt.Errorf("failed to write vCard: %w", err)
	}
	return nil
}

// Close flushes buffered cards and closes the sink.
func (v *VCFWriter) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	return errors.Join(v.w.Flush(), v.sink.Close())
}
