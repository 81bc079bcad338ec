// -- cmd/convert.go --
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tgcontacts/internal/console"
	"github.com/xkilldash9x/tgcontacts/internal/convert"
	"github.com/xkilldash9x/tgcontacts/internal/export"
	"github.com/xkilldash9x/tgcontacts/internal/observability"
	"github.com/xkilldash9x/tgcontacts/internal/telegram"
)

func newConvertCmd() *cobra.Command {
	var input, output string

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a Telegram result.json into an Android contacts file",
		Long: `Reads the contact list from a Telegram Desktop JSON export, normalizes
phone numbers and writes the contacts as CSV or vCard 3.0.

Examples:
  tgcontacts convert -i result.json
  tgcontacts convert -i result.json --country KE --dedupe phone --format vcf
  tgcontacts convert -i result.json -o - > contacts.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			// Records own stdout when streaming, so presentation moves to stderr.
			out := cmd.OutOrStdout()
			if export.IsStdout(output) {
				out = cmd.ErrOrStderr()
			}
			printer := console.New(out, !cfg.Convert().NoColor)
			printer.Banner()

			err = runConvert(cmd.Context(), convert.NewService(cfg, logger), printer, input, output, cfg.Convert().ProgressThreshold)
			if err != nil {
				// The printer already reported it.
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	convertCmd.Flags().StringVarP(&input, "input", "i", "", "Path to the Telegram result.json export (required)")
	convertCmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout; default android_contacts_<timestamp>.<format>)`)
	convertCmd.Flags().String("name-mode", "both", "Name fields to write: first, last or both")
	convertCmd.Flags().String("country", "", "ISO region for local number normalization, e.g. KE")
	convertCmd.Flags().String("dedupe", "none", "Deduplication strategy: none or phone")
	convertCmd.Flags().String("format", "csv", "Output format: csv or vcf")
	convertCmd.Flags().Bool("no-color", false, "Disable colored terminal output")
	convertCmd.Flags().Bool("normalize-names", false, "Apply Unicode NFC normalization to names")
	_ = convertCmd.MarkFlagRequired("input")

	return convertCmd
}

// runConvert executes one conversion and renders its outcome.
func runConvert(ctx context.Context, svc *convert.Service, printer *console.Printer, input, output string, threshold int) error {
	progressShown := false
	req := convert.Request{
		InputPath:  input,
		OutputPath: output,
		Progress: func(done, total int) {
			if total < threshold {
				return
			}
			progressShown = true
			printer.Progress(done, total)
		},
	}

	res, err := svc.Run(ctx, req)
	if progressShown {
		printer.EndProgress()
	}
	if err != nil {
		printer.Error(failureMessage(err))
		observability.GetLogger().Debug("Conversion failed", zap.String("run_id", res.RunID), zap.Error(err))
		return err
	}

	dest := res.OutputPath
	if export.IsStdout(dest) {
		dest = "<stdout>"
	}
	printer.Summary(res.Summary, dest)
	return nil
}

// failureMessage maps a conversion error to the line shown to the user.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, convert.ErrInputNotFound):
		return "Input file not found"
	case errors.Is(err, telegram.ErrInvalidStructure):
		return "Invalid Telegram JSON structure"
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	default:
		return fmt.Sprintf("Conversion failed: %v", err)
	}
}
