// Package contacts drives a conversion run: each exported contact is normalized,
// optionally deduplicated by phone, and handed to a record writer.
package contacts

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/xkilldash9x/tgcontacts/internal/export"
	"github.com/xkilldash9x/tgcontacts/internal/phone"
	"github.com/xkilldash9x/tgcontacts/internal/telegram"
)

// DedupeMode selects duplicate suppression.
type DedupeMode string

const (
	DedupeNone  DedupeMode = "none"
	DedupePhone DedupeMode = "phone"
)

// ParseDedupeMode validates s. An empty string means DedupeNone.
func ParseDedupeMode(s string) (DedupeMode, error) {
	switch m := DedupeMode(s); m {
	case "", DedupeNone:
		return DedupeNone, nil
	case DedupePhone:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported dedupe mode: %q", s)
	}
}

// Options configures one run.
type Options struct {
	NameMode export.NameMode
	// Country is the region hint passed to the normalizer. Empty disables country rules.
	Country string
	Dedupe  DedupeMode
	Format  export.Format
	// NormalizeNames rewrites names to Unicode NFC before emission.
	NormalizeNames bool
	// Progress, when set, is called after every input contact with the running
	// count and the input length.
	Progress func(done, total int)
}

// Contact is a raw contact after normalization.
type Contact struct {
	FirstName         string
	LastName          string
	Phone             string
	Normalized00      bool
	NormalizedCountry bool
}

// Record converts c for the writer.
func (c Contact) Record() export.Record {
	return export.Record{FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
}

// Summary holds the counters of a finished run.
type Summary struct {
	Total             int
	Written           int
	Duplicates        int
	Normalized00      int
	NormalizedCountry int
	Format            export.Format
}

// Transformer applies a Normalizer to exported contacts and emits the survivors.
type Transformer struct {
	normalizer *phone.Normalizer
	opts       Options
	logger     *zap.Logger
}

// NewTransformer creates a Transformer. A nil logger is replaced with a no-op logger.
func NewTransformer(normalizer *phone.Normalizer, opts Options, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Dedupe == "" {
		opts.Dedupe = DedupeNone
	}
	return &Transformer{
		normalizer: normalizer,
		opts:       opts,
		logger:     logger.Named("transformer"),
	}
}

// Normalize derives the normalized contact for raw.
func (t *Transformer) Normalize(raw telegram.Contact) Contact {
	res := t.normalizer.Normalize(raw.PhoneNumber, t.opts.Country)
	c := Contact{
		FirstName:         raw.FirstName,
		LastName:          raw.LastName,
		Phone:             res.Phone,
		Normalized00:      res.Applied00,
		NormalizedCountry: res.AppliedCountry,
	}
	if t.opts.NormalizeNames {
		c.FirstName = norm.NFC.String(c.FirstName)
		c.LastName = norm.NFC.String(c.LastName)
	}
	if res.AppliedCountry {
		t.logger.Debug("Country rule applied",
			zap.String("rule", res.Rule.String()),
			zap.String("phone", res.Phone))
	}
	return c
}

// Run processes contacts in order and writes every surviving contact to w.
// It does not close w. On a write error the summary so far is returned with the error.
func (t *Transformer) Run(ctx context.Context, contacts []telegram.Contact, w export.RecordWriter) (Summary, error) {
	sum := Summary{Format: t.opts.Format}
	seen := make(map[string]struct{})
	total := len(contacts)

	for i, raw := range contacts {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		c := t.Normalize(raw)
		if c.Normalized00 {
			sum.Normalized00++
		}
		if c.NormalizedCountry {
			sum.NormalizedCountry++
		}
		sum.Total++

		emit := true
		if t.opts.Dedupe == DedupePhone {
			if _, dup := seen[c.Phone]; dup {
				sum.Duplicates++
				emit = false
				t.logger.Debug("Skipping duplicate contact", zap.Int("index", i+1), zap.String("phone", c.Phone))
			} else {
				seen[c.Phone] = struct{}{}
			}
		}

		if emit {
			if err := w.Write(c.Record()); err != nil {
				return sum, fmt.Errorf("contact %d: %w", i+1, err)
			}
			sum.Written++
		}

		if t.opts.Progress != nil {
			t.opts.Progress(i+1, total)
		}
	}

	t.logger.Info("Transform complete",
		zap.Int("total", sum.Total),
		zap.Int("written", sum.Written),
		zap.Int("duplicates", sum.Duplicates))
	return sum, nil
}
