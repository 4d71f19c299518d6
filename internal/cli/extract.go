package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

var (
	extractFormat string
	extractOut    string
	extractForce  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract accounts from a report file",
	Long: `Extracts the credit accounts from a CIBIL report (.pdf or .txt), stores
the run and writes the accounts in the chosen format. Without --out the
file is written to the export directory as <name>_accounts.<format>; use
--out - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", string(constants.ExportCSV), "output format: "+strings.Join(constants.ExportFormats, ", "))
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output path, or - for stdout")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "reprocess even if this report was already parsed")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, ok := constants.ParseExportFormat(extractFormat)
	if !ok {
		return fmt.Errorf("unknown format %q", extractFormat)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path := args[0]
	out, err := a.Processor.ProcessFile(cmd.Context(), path, pipeline.Options{Force: extractForce})
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	f, err := export.Render(out.Accounts, format)
	if err != nil {
		return err
	}
	dest := extractOut
	if dest == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dest = filepath.Join(a.Config.Export.Dir, base+"_accounts."+string(format))
	}
	if err := writeOutput(cmd, dest, f.Data); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if dest != "-" {
		note := ""
		if out.Deduplicated {
			note = " (already parsed, reused)"
		}
		cmd.Printf("Run %s: %d accounts, %d rejected blocks, method %s%s\n",
			out.RunID, len(out.Accounts), out.Stats.Rejected, out.Method, note)
		for _, w := range out.Warnings {
			cmd.Printf("  warning: %s\n", w)
		}
		cmd.Printf("Wrote %s\n", dest)
	}
	return nil
}
