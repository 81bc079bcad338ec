// Package convert wires configuration, the Telegram decoder, the transformer and
// a record writer into one conversion run.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tgcontacts/internal/config"
	"github.com/xkilldash9x/tgcontacts/internal/contacts"
	"github.com/xkilldash9x/tgcontacts/internal/export"
	"github.com/xkilldash9x/tgcontacts/internal/phone"
	"github.com/xkilldash9x/tgcontacts/internal/telegram"
)

// ErrInputNotFound is returned when the export file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Request describes one conversion.
type Request struct {
	InputPath string
	// OutputPath may be empty, in which case DefaultOutputPath is used; "-" means stdout.
	OutputPath string
	// Progress is forwarded to the transformer.
	Progress func(done, total int)
}

// Result reports a finished conversion.
type Result struct {
	RunID      string
	OutputPath string
	Summary    contacts.Summary
}

// Service runs conversions against a fixed configuration.
type Service struct {
	cfg    config.Interface
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(cfg config.Interface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger.Named("convert"), now: time.Now}
}

// DefaultOutputPath names the output after the current time, e.g.
// android_contacts_20240131_150405.csv.
func DefaultOutputPath(now time.Time, format export.Format) string {
	return fmt.Sprintf("android_contacts_%s.%s", now.Format("20060102_150405"), format)
}

// CountryTable builds the normalizer table from the configured countries.
func CountryTable(countries map[string]config.CountryConfig) phone.CountryTable {
	table := make(phone.CountryTable, len(countries))
	for region, cc := range countries {
		table[region] = phone.CountryRule{
			CallingCode:        cc.CallingCode,
			MinLength:          cc.MinLength,
			SubscriberPrefixes: cc.SubscriberPrefixes,
		}
	}
	return table
}

// options translates the convert section of the configuration.
func (s *Service) options() (contacts.Options, error) {
	cc := s.cfg.Convert()

	mode, err := export.ParseNameMode(cc.NameMode)
	if err != nil {
		return contacts.Options{}, err
	}
	format, err := export.ParseFormat(cc.Format)
	if err != nil {
		return contacts.Options{}, err
	}
	dedupe, err := contacts.ParseDedupeMode(cc.Dedupe)
	if err != nil {
		return contacts.Options{}, err
	}
	return contacts.Options{
		NameMode:       mode,
		Country:        cc.Country,
		Dedupe:         dedupe,
		Format:         format,
		NormalizeNames: cc.NormalizeNames,
	}, nil
}

// loadContacts checks the input exists and decodes it. Nothing is written before
// this succeeds.
func loadContacts(path string) ([]telegram.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	list, err := telegram.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return list, nil
}

// Run performs the conversion described by req.
func (s *Service) Run(ctx context.Context, req Request) (res Result, err error) {
	opts, err := s.options()
	if err != nil {
		return Result{}, fmt.Errorf("invalid conversion options: %w", err)
	}
	opts.Progress = req.Progress

	inputPath, err := homedir.Expand(req.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to expand input path: %w", err)
	}
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath(s.now(), opts.Format)
	}
	if outputPath, err = homedir.Expand(outputPath); err != nil {
		return Result{}, fmt.Errorf("failed to expand output path: %w", err)
	}

	res = Result{RunID: uuid.NewString(), OutputPath: outputPath}
	logger := s.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", string(opts.Format)),
	)

	list, err := loadContacts(inputPath)
	if err != nil {
		logger.Debug("Input rejected", zap.Error(err))
		return res, err
	}
	logger.Info("Loaded contacts", zap.Int("count", len(list)))

	w, err := export.Open(opts.Format, opts.NameMode, outputPath)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			logger.Warn("Failed to close output cleanly.", zap.Error(cerr))
			err = errors.Join(err, fmt.Errorf("failed to finalize output: %w", cerr))
		}
	}()

	table := CountryTable(s.cfg.Countries())
	if opts.Country != "" {
		if _, ok := table.Lookup(opts.Country); !ok {
			logger.Warn("No country rules configured for region; only 00 normalization applies",
				zap.String("country", opts.Country))
		}
	}

	transformer := contacts.NewTransformer(phone.NewNormalizer(table), opts, logger)
	res.Summary, err = transformer.Run(ctx, list, w)
	if err != nil {
		return res, fmt.Errorf("conversion aborted: %w", err)
	}

	logger.Info("Conversion complete",
		zap.Int("total", res.Summary.Total),
		zap.Int("written", res.Summary.Written),
		zap.Int("duplicates", res.Summary.Duplicates),
		zap.Int("normalized_00", res.Summary.Normalized00),
		zap.Int("normalized_country", res.Summary.NormalizedCountry))
	return res, nil
}
