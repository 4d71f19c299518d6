package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

var (
	runsLimit        int
	runsExportFormat string
	runsExportOut    string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and export stored extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export the accounts of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to show")
	runsExportCmd.Flags().StringVarP(&runsExportFormat, "format", "f", string(constants.ExportCSV), "output format: "+strings.Join(constants.ExportFormats, ", "))
	runsExportCmd.Flags().StringVarP(&runsExportOut, "out", "o", "", "output path, or - for stdout (default <export dir>/cibil_accounts.<format>)")
	runsCmd.AddCommand(runsListCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.Runs.List(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSTATUS\tMETHOD\tACCOUNTS\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.SourceName, r.Status, r.Method, r.Accepted, r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("run id must be a UUID: %w", err)
	}
	format, ok := constants.ParseExportFormat(runsExportFormat)
	if !ok {
		return fmt.Errorf("unknown format %q", runsExportFormat)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.Exporter.Export(cmd.Context(), id, format)
	if err != nil {
		return err
	}
	dest := runsExportOut
	if dest == "" {
		dest = filepath.Join(a.Config.Export.Dir, f.Name)
	}
	if err := writeOutput(cmd, dest, f.Data); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if dest != "-" {
		cmd.Printf("Wrote %s\n", dest)
	}
	return nil
}
