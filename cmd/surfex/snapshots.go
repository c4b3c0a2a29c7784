package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"surfex/internal/config"
	surferrors "surfex/internal/errors"
	"surfex/internal/snapshots"
)

var (
	snapshotsPackage string
	snapshotsLimit   int
	snapshotsFormat  string
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect recorded report snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots, newest first",
	Long: `Examples:
  surfex snapshots list
  surfex snapshots list --package widgets --limit 10
  surfex snapshots list --format=json`,
	Run: runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the stored document of one snapshot",
	Args:  cobra.ExactArgs(1),
	Run:   runSnapshotsShow,
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old snapshots beyond the configured retention",
	Run:   runSnapshotsPrune,
}

func init() {
	snapshotsListCmd.Flags().StringVar(&snapshotsPackage, "package", "", "Filter by package name")
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "Maximum snapshots to list")
	snapshotsListCmd.Flags().StringVar(&snapshotsFormat, "format", "human", "Output format (json, human)")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsPruneCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func openSnapshotStore() (*snapshots.Store, *config.Config) {
	cfg := mustLoadConfig()
	store, err := snapshots.OpenStore(cfg.Snapshots.StorePath, newLogger(cfg))
	if err != nil {
		fatalSurfError(surferrors.New(surferrors.SnapshotStoreFailed, "failed to open snapshot store", err))
	}
	return store, cfg
}

func runSnapshotsList(cmd *cobra.Command, args []string) {
	store, _ := openSnapshotStore()
	defer func() { _ = store.Close() }()

	snaps, err := store.List(snapshotsPackage, snapshotsLimit)
	if err != nil {
		fatalSurfError(err)
	}

	resp := &SnapshotsResponseCLI{Snapshots: snaps}
	output, err := FormatResponse(resp, OutputFormat(snapshotsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runSnapshotsShow(cmd *cobra.Command, args []string) {
	store, _ := openSnapshotStore()
	defer func() { _ = store.Close() }()

	snap, document, err := store.Get(args[0])
	if err != nil {
		fatalSurfError(err)
	}
	if snap == nil {
		fmt.Fprintf(os.Stderr, "Snapshot not found: %s\n", args[0])
		os.Exit(1)
	}

	os.Stdout.Write(document)
}

func runSnapshotsPrune(cmd *cobra.Command, args []string) {
	store, cfg := openSnapshotStore()
	defer func() { _ = store.Close() }()

	removed, err := store.Prune(cfg.Snapshots.KeepLast)
	if err != nil {
		fatalSurfError(err)
	}
	fmt.Printf("Removed %d snapshot(s), keeping the last %d per package.\n", removed, cfg.Snapshots.KeepLast)
}

// SnapshotsResponseCLI is the CLI response format for snapshots list
type SnapshotsResponseCLI struct {
	Snapshots []snapshots.Snapshot `json:"snapshots"`
}

func formatSnapshotsHuman(resp *SnapshotsResponseCLI) string {
	if len(resp.Snapshots) == 0 {
		return "No snapshots recorded."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-36s  %-20s  %-12s  %s\n", "ID", "PACKAGE", "HASH", "CREATED"))
	for _, snap := range resp.Snapshots {
		hash := snap.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		b.WriteString(fmt.Sprintf("%-36s  %-20s  %-12s  %s\n",
			snap.ID, snap.Package, hash, snap.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	return strings.TrimRight(b.String(), "\n")
}
