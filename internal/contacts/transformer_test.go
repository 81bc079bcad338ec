package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/tgcontacts/internal/export"
	"github.com/xkilldash9x/tgcontacts/internal/mocks"
	"github.com/xkilldash9x/tgcontacts/internal/phone"
	"github.com/xkilldash9x/tgcontacts/internal/telegram"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingWriter keeps every record it is given.
type recordingWriter struct {
	records []export.Record
}

func (r *recordingWriter) Write(rec export.Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingWriter) Close() error { return nil }

func newTransformer(opts Options) *Transformer {
	return NewTransformer(phone.NewNormalizer(phone.DefaultCountryTable()), opts, nil)
}

var sample = []telegram.Contact{
	{FirstName: "Amina", LastName: "Otieno", PhoneNumber: "0712345678"},
	{FirstName: "Amina", LastName: "O.", PhoneNumber: "254712345678"},
	{FirstName: "Brian", PhoneNumber: "00447700900123"},
	{LastName: "Wanjiku", PhoneNumber: "712345678"},
	{FirstName: "Nobody"},
	{FirstName: "Also Nobody"},
	{FirstName: "Chris", PhoneNumber: " +15551234567 "},
}

func TestRun_NoDedupe(t *testing.T) {
	tr := newTransformer(Options{NameMode: export.NameBoth, Country: "KE", Format: export.FormatCSV})
	w := &recordingWriter{}

	sum, err := tr.Run(context.Background(), sample, w)
	require.NoError(t, err)

	want := Summary{
		Total:             7,
		Written:           7,
		Duplicates:        0,
		Normalized00:      1,
		NormalizedCountry: 3,
		Format:            export.FormatCSV,
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	wantRecords := []export.Record{
		{FirstName: "Amina", LastName: "Otieno", Phone: "+254712345678"},
		{FirstName: "Amina", LastName: "O.", Phone: "+254712345678"},
		{FirstName: "Brian", Phone: "+447700900123"},
		{LastName: "Wanjiku", Phone: "+254712345678"},
		{FirstName: "Nobody"},
		{FirstName: "Also Nobody"},
		{FirstName: "Chris", Phone: "+15551234567"},
	}
	if diff := cmp.Diff(wantRecords, w.records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DedupeByPhone(t *testing.T) {
	tr := newTransformer(Options{NameMode: export.NameBoth, Country: "KE", Dedupe: DedupePhone, Format: export.FormatVCF})
	w := &recordingWriter{}

	sum, err := tr.Run(context.Background(), sample, w)
	require.NoError(t, err)

	// Three spellings of the same KE number collapse to one; the two empty
	// phones share the "" key and collapse too.
	assert.Equal(t, 7, sum.Total)
	assert.Equal(t, 4, sum.Written)
	assert.Equal(t, 3, sum.Duplicates)
	assert.Equal(t, sum.Total, sum.Written+sum.Duplicates)
	// Flags are counted for duplicates as well.
	assert.Equal(t, 3, sum.NormalizedCountry)

	require.Len(t, w.records, 4)
	assert.Equal(t, "Otieno", w.records[0].LastName, "the first occurrence wins")
	assert.Equal(t, "Nobody", w.records[2].FirstName)

	phones := make(map[string]bool)
	for _, r := range w.records {
		assert.False(t, phones[r.Phone], "phone %q written twice", r.Phone)
		phones[r.Phone] = true
	}
}

func TestRun_CounterIdentities(t *testing.T) {
	// Generate inputs with many collisions to exercise the invariants.
	var input []telegram.Contact
	for i := 0; i < 250; i++ {
		input = append(input, telegram.Contact{
			FirstName:   fmt.Sprintf("c%d", i),
			PhoneNumber: fmt.Sprintf("07%08d", i%37),
		})
	}

	for _, dedupe := range []DedupeMode{DedupeNone, DedupePhone} {
		t.Run(string(dedupe), func(t *testing.T) {
			tr := newTransformer(Options{NameMode: export.NameFirst, Country: "KE", Dedupe: dedupe, Format: export.FormatCSV})
			w := &recordingWriter{}

			sum, err := tr.Run(context.Background(), input, w)
			require.NoError(t, err)

			assert.Equal(t, len(input), sum.Total)
			assert.Equal(t, sum.Written, len(w.records))
			if dedupe == DedupePhone {
				assert.Equal(t, sum.Total, sum.Written+sum.Duplicates)
				assert.Equal(t, 37, sum.Written)
			} else {
				assert.Equal(t, sum.Total, sum.Written)
				assert.Zero(t, sum.Duplicates)
			}
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	tr := newTransformer(Options{Format: export.FormatVCF})
	sum, err := tr.Run(context.Background(), nil, &recordingWriter{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Format: export.FormatVCF}, sum)
}

func TestRun_WriteErrorStopsRun(t *testing.T) {
	w := new(mocks.MockRecordWriter)
	w.On("Write", mock.MatchedBy(func(r export.Record) bool { return r.FirstName == "Amina" })).Return(nil).Once()
	w.On("Write", mock.Anything).Return(errors.New("disk full")).Once()

	tr := newTransformer(Options{NameMode: export.NameBoth, Country: "KE", Format: export.FormatCSV})
	sum, err := tr.Run(context.Background(), sample, w)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact 2")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 2, sum.Total)
	w.AssertExpectations(t)
	w.AssertNotCalled(t, "Close")
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &recordingWriter{}
	tr := newTransformer(Options{
		Format:   export.FormatCSV,
		Progress: func(done, total int) { cancel() },
	})

	sum, err := tr.Run(ctx, sample, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Total)
	assert.Len(t, w.records, 1)
}

func TestRun_Progress(t *testing.T) {
	var calls [][2]int
	tr := newTransformer(Options{
		Dedupe: DedupePhone,
		Format: export.FormatCSV,
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})

	_, err := tr.Run(context.Background(), sample[:3], &recordingWriter{})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestNormalize_Names(t *testing.T) {
	decomposed := "Rene\u0301"
	composed := "Ren\u00e9"

	plain := newTransformer(Options{})
	assert.Equal(t, decomposed, plain.Normalize(telegram.Contact{FirstName: decomposed}).FirstName)

	nfc := newTransformer(Options{NormalizeNames: true})
	got := nfc.Normalize(telegram.Contact{FirstName: decomposed, LastName: decomposed})
	assert.Equal(t, composed, got.FirstName)
	assert.Equal(t, composed, got.LastName)
}

func TestNormalize_Flags(t *testing.T) {
	tr := newTransformer(Options{Country: "ke"})

	got := tr.Normalize(telegram.Contact{FirstName: "A", PhoneNumber: "0712345678"})
	assert.Equal(t, Contact{FirstName: "A", Phone: "+254712345678", NormalizedCountry: true}, got)

	got = tr.Normalize(telegram.Contact{PhoneNumber: "0041791234567"})
	assert.Equal(t, Contact{Phone: "+41791234567", Normalized00: true}, got)
}

func TestParseDedupeMode(t *testing.T) {
	m, err := ParseDedupeMode("")
	require.NoError(t, err)
	assert.Equal(t, DedupeNone, m)

	m, err = ParseDedupeMode("phone")
	require.NoError(t, err)
	assert.Equal(t, DedupePhone, m)

	_, err = ParseDedupeMode("email")
	assert.True(t, err != nil && strings.Contains(err.Error(), "email"))
}

func TestRun_VCFBlockCountMatchesWritten(t *testing.T) {
	sink := &strings.Builder{}
	w := export.NewVCFWriter(nopCloser{sink})

	tr := newTransformer(Options{Country: "KE", Dedupe: DedupePhone, Format: export.FormatVCF})
	sum, err := tr.Run(context.Background(), sample, w)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, sum.Written, strings.Count(sink.String(), "BEGIN:VCARD\n"))
}

type nopCloser struct{ *strings.Builder }

func (nopCloser) Close() error { return nil }
