package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/mayike4315/gpt-web/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputPath string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the message history",
	Long: `Export all stored messages in time order (jsonl, md, yaml, json).

Output goes to stdout unless --out names a file. When --out is a directory
the file is named after the database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, paths, err := openStore()
		if err != nil {
			return err
		}

		var messages []internal.ChatMessage
		err = internal.ShowProgress(cmd.Context(), "Reading messages...", func() error {
			var listErr error
			messages, listErr = store.List(cmd.Context())
			return listErr
		})
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		database := strings.TrimSuffix(filepath.Base(paths.DatabasePath), filepath.Ext(paths.DatabasePath))
		transcript := export.NewTranscript(database, messages)

		if outputPath == "" || outputPath == "-" {
			return exportTo(exporter, transcript, cmd.OutOrStdout())
		}

		target := outputPath
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			target = filepath.Join(target, database+"."+exporter.Extension())
		}
		if err := writeExport(exporter, transcript, target); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Exported %d message(s) to %s", len(messages), target))
		return nil
	},
}

func writeExport(exporter export.Exporter, transcript *export.Transcript, target string) (err error) {
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return exportTo(exporter, transcript, f)
}

func exportTo(exporter export.Exporter, transcript *export.Transcript, w io.Writer) error {
	if err := exporter.Export(transcript, w); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Output file or directory (default stdout)")
}
