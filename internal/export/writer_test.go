package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferSink is an in-memory io.WriteCloser that records Close calls.
type bufferSink struct {
	bytes.Buffer
	closed int
}

func (b *bufferSink) Close() error {
	b.closed++
	return nil
}

// failingSink rejects every write.
type failingSink struct{ closed bool }

func (f *failingSink) Write(p []byte) (int, error) { return 0, errors.New("disk full") }
func (f *failingSink) Close() error                { f.closed = true; return nil }

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("vcf")
	require.NoError(t, err)
	assert.Equal(t, FormatVCF, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestParseNameMode(t *testing.T) {
	for _, s := range []string{"first", "last", "both"} {
		m, err := ParseNameMode(s)
		require.NoError(t, err)
		assert.Equal(t, NameMode(s), m)
	}
	_, err := ParseNameMode("middle")
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{"First Name", "Phone"}, Header(NameFirst))
	assert.Equal(t, []string{"Last Name", "Phone"}, Header(NameLast))
	assert.Equal(t, []string{"First Name", "Last Name", "Phone"}, Header(NameBoth))

	// Column count is the number of enabled name columns plus one.
	for mode, names := range map[NameMode]int{NameFirst: 1, NameLast: 1, NameBoth: 2} {
		assert.Len(t, Header(mode), names+1, mode)
	}
}

func TestCSVWriter(t *testing.T) {
	t.Run("header then rows in order", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewCSVWriter(sink, NameBoth)

		require.NoError(t, w.Write(Record{FirstName: "Amina", LastName: "Otieno", Phone: "+254712345678"}))
		require.NoError(t, w.Write(Record{FirstName: "Brian", Phone: "+254700000001"}))
		require.NoError(t, w.Close())

		assert.Equal(t,
			"First Name,Last Name,Phone\r\n"+
				"Amina,Otieno,+254712345678\r\n"+
				"Brian,,+254700000001\r\n",
			sink.String())
		assert.Equal(t, 1, sink.closed)
	})

	t.Run("name mode drops columns", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewCSVWriter(sink, NameLast)

		require.NoError(t, w.Write(Record{FirstName: "Amina", LastName: "Otieno", Phone: "1"}))
		require.NoError(t, w.Close())

		assert.Equal(t, "Last Name,Phone\r\nOtieno,1\r\n", sink.String())
	})

	t.Run("embedded delimiters are quoted", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewCSVWriter(sink, NameBoth)

		rec := Record{FirstName: "Otieno, Jr.", LastName: "Line\nBreak", Phone: `"quoted"`}
		require.NoError(t, w.Write(rec))
		require.NoError(t, w.Close())

		rows, err := csv.NewReader(strings.NewReader(sink.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{rec.FirstName, rec.LastName, rec.Phone}, rows[1])
	})

	t.Run("header written even with no records", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewCSVWriter(sink, NameFirst)
		require.NoError(t, w.Close())

		assert.Equal(t, "First Name,Phone\r\n", sink.String())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewCSVWriter(sink, NameBoth)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())
		assert.Equal(t, 1, sink.closed)
	})

	t.Run("flush error surfaces on close", func(t *testing.T) {
		sink := &failingSink{}
		w := NewCSVWriter(sink, NameBoth)
		require.NoError(t, w.Write(Record{Phone: "1"}), "csv buffers, so the write itself succeeds")

		err := w.Close()
		assert.ErrorContains(t, err, "disk full")
		assert.True(t, sink.closed)
	})
}

func TestVCFWriter(t *testing.T) {
	t.Run("card layout", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewVCFWriter(sink)

		require.NoError(t, w.Write(Record{FirstName: "Amina", LastName: "Otieno", Phone: "+254712345678"}))
		require.NoError(t, w.Close())

		assert.Equal(t,
			"BEGIN:VCARD\n"+
				"VERSION:3.0\n"+
				"N:Otieno;Amina;;;\n"+
				"FN:Amina Otieno\n"+
				"TEL;TYPE=CELL:+254712345678\n"+
				"END:VCARD\n\n",
			sink.String())
		assert.Equal(t, 1, sink.closed)
	})

	t.Run("formatted name is trimmed when one half is missing", func(t *testing.T) {
		assert.Equal(t, "Amina", FormattedName(Record{FirstName: "Amina"}))
		assert.Equal(t, "Otieno", FormattedName(Record{LastName: "Otieno"}))
		assert.Equal(t, "", FormattedName(Record{}))
		assert.Contains(t, Card(Record{LastName: "Otieno"}), "\nFN:Otieno\n")
		assert.Contains(t, Card(Record{}), "\nN:;;;;\nFN:\n")
	})

	t.Run("one block per record", func(t *testing.T) {
		sink := &bufferSink{}
		w := NewVCFWriter(sink)
		for i := 0; i < 5; i++ {
			require.NoError(t, w.Write(Record{Phone: "1"}))
		}
		require.NoError(t, w.Close())

		assert.Equal(t, 5, strings.Count(sink.String(), "BEGIN:VCARD\n"))
		assert.Equal(t, 5, strings.Count(sink.String(), "END:VCARD\n\n"))
	})
}

func TestNew(t *testing.T) {
	w, err := New(FormatCSV, NameBoth, &bufferSink{})
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)

	w, err = New(FormatVCF, NameBoth, &bufferSink{})
	require.NoError(t, err)
	assert.IsType(t, &VCFWriter{}, w)

	_, err = New(Format("json"), NameBoth, &bufferSink{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("creates the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.vcf")
		w, err := Open(FormatVCF, NameBoth, path)
		require.NoError(t, err)
		require.NoError(t, w.Write(Record{FirstName: "A", Phone: "1"}))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCARD\n"))
	})

	t.Run("truncates an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("stale content that is long\n"), 0o644))

		w, err := Open(FormatCSV, NameFirst, path)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "First Name,Phone\r\n", string(data))
	})

	t.Run("unsupported format creates nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xml")
		_, err := Open(Format("xml"), NameBoth, path)
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Open(FormatCSV, NameBoth, filepath.Join(t.TempDir(), "nope", "out.csv"))
		assert.ErrorContains(t, err, "failed to create output file")
	})
}

func TestIsStdout(t *testing.T) {
	assert.True(t, IsStdout("-"))
	assert.True(t, IsStdout("stdout"))
	assert.False(t, IsStdout("out.csv"))
}
