package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PlayerIUnknown/aegis-gui/internal/export"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

var (
	exportEmail  string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scan artifacts.",
}

var exportSBOMCmd = &cobra.Command{
	Use:   "sbom <scan-id>",
	Short: "Download a scan's SBOM as CSV or PDF.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scanID := strings.TrimSpace(args[0])
		if scanID == "" {
			return usageError("scan id is required")
		}
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return usageError("%v", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cliRequestTimeout)
		defer cancel()

		api, _, token, err := signedInClient(ctx, cmd, exportEmail)
		if err != nil {
			return err
		}
		resp, err := api.ScanDetails(ctx, token, scanID)
		if err != nil {
			return err
		}

		details := scans.MapScanDetails(resp)
		var buf bytes.Buffer
		if err := export.Write(&buf, format, details); err != nil {
			return err
		}

		path := exportOutputPath(exportOutput, details, format)
		if err := writeOutput(path, cmd.OutOrStdout(), buf.Bytes()); err != nil {
			return err
		}
		if path != "-" {
			cmd.PrintErrf("wrote %d SBOM components to %s\n", len(export.SBOMRows(details)), path)
		}
		return nil
	},
}

func init() {
	exportSBOMCmd.Flags().StringVar(&exportEmail, "email", "", "account email; prompts for the password when "+envPassword+" is unset")
	exportSBOMCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatCSV, "output format: csv or pdf")
	exportSBOMCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, or - for stdout (default: derived from the repository and scan id)")
	exportCmd.AddCommand(exportSBOMCmd)
}

func exportOutputPath(output string, details scans.ScanDetails, format string) string {
	if output = strings.TrimSpace(output); output != "" {
		return output
	}
	return export.Filename(details.Repository.Name, details.ID, format)
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
