package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVWriter emits a header row followed by one row per record.
// Columns are "First Name" and/or "Last Name" per NameMode, then "Phone".
type CSVWriter struct {
	sink          io.WriteCloser
	w             *csv.Writer
	mode          NameMode
	headerWritten bool
	closed        bool
}

// NewCSVWriter returns a CSVWriter over sink. Rows end in CRLF, as RFC 4180 and
// spreadsheet importers expect.
func NewCSVWriter(sink io.WriteCloser, mode NameMode) *CSVWriter {
	w := csv.NewWriter(sink)
	w.UseCRLF = true
	return &CSVWriter{sink: sink, w: w, mode: mode}
}

// Header returns the column names for mode.
func Header(mode NameMode) []string {
	cols := make([]string, 0, 3)
	if mode.IncludesFirst() {
		cols = append(cols, "First Name")
	}
	if mode.IncludesLast() {
		cols = append(cols, "Last Name")
	}
	return append(cols, "Phone")
}

func (c *CSVWriter) ensureHeader() error {
	if c.headerWritten {
		return nil
	}
	c.headerWritten = true
	if err := c.w.Write(Header(c.mode)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return nil
}

// Write appends one row for rec, writing the header first if needed.
func (c *CSVWriter) Write(rec Record) error {
	if err := c.ensureHeader(); err != nil {
		return err
	}
	row := make([]string, 0, 3)
	if c.mode.IncludesFirst() {
		row = append(row, rec.FirstName)
	}
	if c.mode.IncludesLast() {
		row = append(row, rec.LastName)
	}
	row = append(row, rec.Phone)
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	return nil
}

// Close writes the header if no record was written, flushes, and closes the sink.
func (c *CSVWriter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	headerErr := c.ensureHeader()
	c.w.Flush()
	return errors.Join(headerErr, c.w.Error(), c.sink.Close())
}
