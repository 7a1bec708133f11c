package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/pwexport/internal/events"
	"github.com/TheMichaelB/pwexport/internal/models"
	"github.com/TheMichaelB/pwexport/internal/services/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Decrypt an export and write it as CSV",
	Long: `Convert decrypts an export container with its passphrase and prints
the entries as CSV. Use "-" to read the container from stdin.

The passphrase is taken from --passphrase, then PWEXPORT_PASSPHRASE, and
is prompted for otherwise.`,
	Example: `  pwexport convert vault.pwexport > passwords.csv
  pwexport convert vault.pwexport --save -o work
  pbpaste | pwexport convert -`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var (
	convertOutput       string
	convertSave         bool
	convertIncludeEmpty bool
	convertStdout       bool
	convertPassphrase   string
)

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "",
		"Output file name (default: input name with .csv)")
	convertCmd.Flags().BoolVar(&convertSave, "save", false,
		"Save the CSV to the output directory (default from output.auto_persist)")
	convertCmd.Flags().BoolVar(&convertIncludeEmpty, "include-empty", false,
		"Keep entries whose fields are all empty (default from convert.include_empty_fields)")
	convertCmd.Flags().BoolVar(&convertStdout, "stdout", false,
		"Also print the CSV when saving")
	convertCmd.Flags().StringVarP(&convertPassphrase, "passphrase", "p", "",
		"Export passphrase (will prompt if not provided)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, err := readInput(args[0])
	if err != nil {
		return err
	}

	passphrase, err := resolvePassphrase(convertPassphrase, promptPassword)
	if err != nil {
		return err
	}

	opts := convert.Options{
		AutoPersist:        cfg.Output.AutoPersist,
		FilenameOverride:   convertOutput,
		IncludeEmptyFields: cfg.Convert.IncludeEmptyFields,
	}
	if cmd.Flags().Changed("save") {
		opts.AutoPersist = convertSave
	}
	if cmd.Flags().Changed("include-empty") {
		opts.IncludeEmptyFields = convertIncludeEmpty
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = events.WithConversionID(ctx, strconv.FormatInt(time.Now().UnixNano(), 36))

	if !service.IsLikelySourceFile(in.Metadata()) && !models.LooksLikeContainer(in.Data) && !jsonOutput {
		printWarning("%s does not look like an export container", displayName(in))
	}

	s, cleanup := startSpinner("Decrypting export...")
	result, err := service.Convert(ctx, in, passphrase, opts)
	cleanup()

	if err != nil {
		reportConvertError(err)
		return err
	}

	return reportConvertResult(cmd.OutOrStdout(), result, opts, s != nil)
}

func readInput(arg string) (convert.Input, error) {
	if arg == "-" {
		data, err := readStdin()
		if err != nil {
			return convert.Input{}, fmt.Errorf("read stdin: %w", err)
		}
		return convert.FromText(string(data)), nil
	}
	return convert.FromFile(arg)
}

func displayName(in convert.Input) string {
	if in.Name == "" {
		return "input"
	}
	return in.Name
}

// startSpinner runs a spinner on stderr when it is a terminal and output is
// not JSON. The returned spinner is nil when none was started.
func startSpinner(message string) (*spinner.Spinner, func()) {
	if jsonOutput || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil, func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	if !noColor {
		_ = s.Color("cyan")
	}
	s.Start()

	return s, s.Stop
}

func reportConvertError(err error) {
	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
			"code":    models.ErrorCode(err),
		})
		return
	}

	if models.IsWrongPassphrase(err) {
		printWarning("The passphrase is probably wrong")
	}
}

func reportConvertResult(out io.Writer, result *convert.Result, opts convert.Options, interactive bool) error {
	printCSV := result.SavedPath == "" || convertStdout

	if jsonOutput {
		payload := map[string]interface{}{
			"success":  result.Succeeded,
			"records":  result.RecordCount,
			"filename": result.SuggestedFilename,
			"stats":    result.Stats,
		}
		if result.SavedPath != "" {
			payload["saved_path"] = result.SavedPath
		}
		if printCSV {
			payload["csv"] = result.Text
		}
		printJSON(payload)
		return nil
	}

	if printCSV {
		if _, err := io.WriteString(out, result.Text+"\n"); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	switch {
	case result.SavedPath != "":
		printSuccess("Saved %d records to %s", result.RecordCount, result.SavedPath)
	case opts.AutoPersist:
		printWarning("%s already exists, nothing saved", result.SuggestedFilename)
	case interactive:
		printInfo("Converted %d records", result.RecordCount)
	}

	if result.Stats.Short > 0 {
		printWarning("Skipped %d malformed rows", result.Stats.Short)
	}

	return nil
}
