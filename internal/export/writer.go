// Package export serializes normalized contacts into the import formats Android
// understands. A RecordWriter owns its sink and must be closed on every path.
package export

import (
	"fmt"
	"io"
	"os"
)

// Format selects the emission layout.
type Format string

const (
	FormatCSV Format = "csv"
	FormatVCF Format = "vcf"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatVCF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", s)
	}
}

// NameMode controls which name columns the CSV layout carries.
type NameMode string

const (
	NameFirst NameMode = "first"
	NameLast  NameMode = "last"
	NameBoth  NameMode = "both"
)

// ParseNameMode validates s as a NameMode.
func ParseNameMode(s string) (NameMode, error) {
	switch m := NameMode(s); m {
	case NameFirst, NameLast, NameBoth:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported name mode: %q", s)
	}
}

// IncludesFirst reports whether the first-name column is emitted.
func (m NameMode) IncludesFirst() bool { return m == NameFirst || m == NameBoth }

// IncludesLast reports whether the last-name column is emitted.
func (m NameMode) IncludesLast() bool { return m == NameLast || m == NameBoth }

// Record is one contact ready for emission.
type Record struct {
	FirstName string
	LastName  string
	Phone     string
}

// RecordWriter defines the interface for writing contact records to an output.
type RecordWriter interface {
	// Write emits a single record.
	Write(rec Record) error
	// Close flushes any buffered output and closes the underlying sink.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// IsStdout reports whether outputPath designates standard output.
func IsStdout(outputPath string) bool {
	return outputPath == "-" || outputPath == "stdout"
}

// New creates a RecordWriter for format over w. The writer takes ownership of w.
func New(format Format, mode NameMode, w io.WriteCloser) (RecordWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w, mode), nil
	case FormatVCF:
		return NewVCFWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// Open creates (or truncates) outputPath and returns a RecordWriter over it.
// The format is checked before anything touches the filesystem.
func Open(format Format, mode NameMode, outputPath string) (RecordWriter, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	var sink io.WriteCloser
	if IsStdout(outputPath) {
		// Wrap Stdout so Close() is a no-op.
		sink = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		sink = f
	}
	return New(format, mode, sink)
}
