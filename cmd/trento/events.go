package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MaximVirta/trento/internal/platform/tui"
	"github.com/MaximVirta/trento/internal/storage"
)

var flagPlain bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Browse stored events",
	Long: `Open an interactive browser over the runs in the events database.

Without a terminal (or with --plain) a summary of recent runs is
printed instead.

Examples:
  trento events
  trento events --plain
  trento events --db ./events.db`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain run summary instead of the browser")
}

func runEvents(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening events database: %w", err)
	}
	defer store.Close()

	if flagPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printRunSummary(store)
	}

	// Get terminal size for the browser layout
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	return tui.RunBrowser(store, width, height)
}

// printRunSummary lists recent runs with their aggregate statistics.
func printRunSummary(store *storage.Store) error {
	runs, err := store.RecentRuns(20)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'trento run' to generate the first events.")
		return nil
	}

	fmt.Println("Recent runs:")
	fmt.Println()
	fmt.Printf("  %-5s  %-8s  %7s  %8s  %8s  %10s  %s\n",
		"Run", "System", "Events", "<b> [fm]", "<Npart>", "<mult>", "Date")

	for _, r := range runs {
		stats, statsErr := store.Stats(r.ID)
		if statsErr != nil {
			return statsErr
		}
		fmt.Printf("  %-5d  %-8s  %7d  %8.3f  %8.1f  %10.4g  %s\n",
			r.ID, r.ProjectileA+"+"+r.ProjectileB, stats.NEvents,
			stats.MeanB, stats.MeanNpart, stats.MeanMult,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
