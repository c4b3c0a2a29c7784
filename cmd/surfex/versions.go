package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"surfex/internal/manifests"
)

var (
	versionsFormat     string
	versionsIncludeDev bool
)

var versionsCmd = &cobra.Command{
	Use:   "check-versions",
	Short: "Check dependency version consistency across manifests",
	Long: `Scan the repository for package manifests (package.json, pyproject.toml,
Cargo.toml), group requirements by dependency name, and report any dependency
required with more than one distinct version range.

Exits with code 1 when a divergence is found, for CI use.

Examples:
  surfex check-versions
  surfex check-versions --include-dev
  surfex check-versions --format=json`,
	Run: runCheckVersions,
}

func init() {
	versionsCmd.Flags().StringVar(&versionsFormat, "format", "human", "Output format (json, human)")
	versionsCmd.Flags().BoolVar(&versionsIncludeDev, "include-dev", false, "Include dev dependencies")

	rootCmd.AddCommand(versionsCmd)
}

func runCheckVersions(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	includeDev := versionsIncludeDev || cfg.Versions.IncludeDev
	checkReport, err := manifests.CheckVersions(repoRootFlag, manifests.Options{
		Ignore:     cfg.Versions.Ignore,
		IncludeDev: includeDev,
	})
	if err != nil {
		fatalSurfError(err)
	}

	resp := &VersionsResponseCLI{
		Requirements: len(checkReport.Requirements),
		Consistent:   checkReport.Consistent(),
		Divergences:  checkReport.Divergences,
	}

	output, err := FormatResponse(resp, OutputFormat(versionsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("version check completed",
		"requirements", resp.Requirements,
		"divergences", len(resp.Divergences),
		"duration", time.Since(start).Milliseconds(),
	)

	// Exit with code 1 if divergences found (for CI)
	if !resp.Consistent {
		os.Exit(1)
	}
}

// VersionsResponseCLI is the CLI response format for check-versions
type VersionsResponseCLI struct {
	Requirements int                    `json:"requirements"`
	Consistent   bool                   `json:"consistent"`
	Divergences  []manifests.Divergence `json:"divergences"`
}

func formatVersionsHuman(resp *VersionsResponseCLI) string {
	var b strings.Builder

	b.WriteString("Dependency Version Check\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Requirements scanned: %d\n", resp.Requirements))

	summary := manifests.Summarize(&manifests.Report{Divergences: resp.Divergences})
	if resp.Consistent {
		b.WriteString("\n✓ " + summary + "\n")
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString(fmt.Sprintf("\n✗ Divergent dependencies (%d):\n\n", len(resp.Divergences)))
	for _, line := range strings.Split(summary, "\n") {
		b.WriteString("  " + line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
