package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"surfex/internal/decl"
	surferrors "surfex/internal/errors"
	"surfex/internal/report"
	"surfex/internal/snapshots"
)

var (
	extractInput      string
	extractOutput     string
	extractFormat     string
	extractNoSnapshot bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the public API surface from a declaration tree",
	Long: `Read a resolved declaration tree, apply stability and name filtering,
and write the canonical API report.

The report is validated against the built-in document schema before anything
touches disk; a validation failure aborts the run without writing.

Examples:
  surfex extract --input decls.json
  surfex extract --input decls.json --output dist/api-report.json
  surfex extract --input decls.json --format=json
  surfex extract --input decls.json --no-snapshot`,
	Run: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "Declaration tree JSON file (required)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "Report output path (default: from config)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "human", "Output format (json, human)")
	extractCmd.Flags().BoolVar(&extractNoSnapshot, "no-snapshot", false, "Skip recording a snapshot")
	_ = extractCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	ctx := newContext()

	root, err := decl.LoadFile(extractInput)
	if err != nil {
		fatalSurfError(err)
	}

	outputPath := extractOutput
	if outputPath == "" {
		outputPath = cfg.Report.OutputPath
	}

	extractor := report.NewExtractor(report.Options{Logger: logger})
	encoded, err := extractor.WriteReport(ctx, root, outputPath)
	if err != nil {
		fatalSurfError(err)
	}

	resp := &ExtractResponseCLI{
		Package:    root.Name,
		OutputPath: outputPath,
		SizeBytes:  len(encoded),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if cfg.Snapshots.Enabled && !extractNoSnapshot {
		// Snapshot recording is best-effort: the report is already on disk.
		if snap := recordSnapshot(cfg.Snapshots.StorePath, cfg.Snapshots.KeepLast, root.Name, encoded, logger); snap != nil {
			resp.SnapshotID = snap.ID
			resp.SnapshotHash = snap.Hash
		}
	}

	output, err := FormatResponse(resp, OutputFormat(extractFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("extract completed",
		"package", resp.Package,
		"bytes", resp.SizeBytes,
		"duration", resp.DurationMs,
	)
}

func recordSnapshot(storePath string, keepLast int, packageName string, encoded []byte, logger *slog.Logger) *snapshots.Snapshot {
	store, err := snapshots.OpenStore(storePath, logger)
	if err != nil {
		logger.Warn("snapshot store unavailable", "error", err.Error())
		return nil
	}
	defer func() { _ = store.Close() }()

	snap, err := store.Record(packageName, encoded)
	if err != nil {
		logger.Warn("failed to record snapshot", "error", err.Error())
		return nil
	}
	if _, err := store.Prune(keepLast); err != nil {
		logger.Warn("failed to prune snapshots", "error", err.Error())
	}
	return snap
}

// fatalSurfError prints a structured error with any suggested fixes, then
// exits non-zero.
func fatalSurfError(err error) {
	var surfErr *surferrors.SurfError
	if errors.As(err, &surfErr) {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", surfErr.Code, surfErr.Message)
		for _, fix := range surfErr.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(os.Stderr, "  try: %s\n", fix.Command)
			} else if fix.Description != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", fix.Description)
			}
		}
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

// ExtractResponseCLI is the CLI response format for extract
type ExtractResponseCLI struct {
	Package      string `json:"package"`
	OutputPath   string `json:"outputPath"`
	SizeBytes    int    `json:"sizeBytes"`
	SnapshotID   string `json:"snapshotId,omitempty"`
	SnapshotHash string `json:"snapshotHash,omitempty"`
	DurationMs   int64  `json:"durationMs"`
}

func formatExtractHuman(resp *ExtractResponseCLI) string {
	var b strings.Builder

	b.WriteString("API Surface Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Package: %s\n", resp.Package))
	b.WriteString(fmt.Sprintf("Written: %s (%d bytes)\n", resp.OutputPath, resp.SizeBytes))
	if resp.SnapshotID != "" {
		hash := resp.SnapshotHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		b.WriteString(fmt.Sprintf("Snapshot: %s (hash %s)\n", resp.SnapshotID, hash))
	}
	b.WriteString(fmt.Sprintf("Duration: %dms\n", resp.DurationMs))

	return strings.TrimRight(b.String(), "\n")
}
