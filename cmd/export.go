package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/qorvid/cursor-atlas/internal"
	"github.com/qorvid/cursor-atlas/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat       string
	exportDir          string
	exportWorkspace    string
	exportConversation string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversations grouped by workspace",
	Long: `Export all conversations to files, one file per conversation, laid out
under <out>/<run-id>/<workspace-id>/. Each run gets a fresh UUID and writes a
manifest.yaml describing what was exported where.

Use --workspace to export a single workspace bucket ("unassigned" works too),
or --conversation to export one conversation by id or unique id prefix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			format = cfg.ExportFormat
		}
		outDir := exportDir
		if outDir == "" {
			outDir = cfg.ExportDir
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		result, err := runPipeline(true)
		if err != nil {
			return err
		}

		groups := internal.GroupByWorkspace(result.Conversations, result.Attributions)

		if exportConversation != "" {
			conv, err := findConversation(result.Conversations, exportConversation)
			if err != nil {
				return err
			}
			groups = filterGroupsByConversation(groups, conv.ID)
		}
		if exportWorkspace != "" {
			bucket, ok := groups[exportWorkspace]
			if !ok {
				return fmt.Errorf("no conversations attributed to workspace %q", exportWorkspace)
			}
			groups = map[string][]*internal.Conversation{exportWorkspace: bucket}
		}
		if len(groups) == 0 {
			return fmt.Errorf("nothing to export")
		}

		runID := uuid.New().String()
		runDir := filepath.Join(outDir, runID)

		written := 0
		for workspaceID, bucket := range groups {
			dir := filepath.Join(runDir, sanitizeName(workspaceID))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &internal.ExportError{Format: format, Path: dir, Err: err}
			}
			for _, conv := range bucket {
				path := filepath.Join(dir, conversationFileName(conv, exporter.Extension()))
				if err := writeConversation(exporter, conv, path); err != nil {
					return err
				}
				internal.LogDebug("Wrote %s", path)
				written++
			}
		}

		manifest := export.BuildManifest(runID, format, groups, func(workspaceID string, conv *internal.Conversation) string {
			return filepath.Join(sanitizeName(workspaceID), conversationFileName(conv, exporter.Extension()))
		})
		manifestPath := filepath.Join(runDir, "manifest.yaml")
		mf, err := os.Create(manifestPath)
		if err != nil {
			return &internal.ExportError{Format: format, Path: manifestPath, Err: err}
		}
		defer mf.Close()
		if err := export.WriteManifest(manifest, mf); err != nil {
			return &internal.ExportError{Format: format, Path: manifestPath, Err: err}
		}

		fmt.Printf("Exported %d conversation(s) to %s\n", written, runDir)
		return nil
	},
}

func writeConversation(exporter export.Exporter, conv *internal.Conversation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(conv, f); err != nil {
		f.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func conversationFileName(conv *internal.Conversation, ext string) string {
	return fmt.Sprintf("conversation_%s.%s", conv.ID, ext)
}

// sanitizeName keeps workspace ids safe as directory names.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func filterGroupsByConversation(groups map[string][]*internal.Conversation, convID string) map[string][]*internal.Conversation {
	for workspaceID, bucket := range groups {
		for _, conv := range bucket {
			if conv.ID == convID {
				return map[string][]*internal.Conversation{workspaceID: {conv}}
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format: md, json, jsonl, yaml (default from config, md)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (default from config, ./exports)")
	exportCmd.Flags().StringVar(&exportWorkspace, "workspace", "", "Export only this workspace bucket")
	exportCmd.Flags().StringVar(&exportConversation, "conversation", "", "Export only this conversation (id or unique prefix)")
}
