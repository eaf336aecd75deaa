// trento generates the initial-state geometry of relativistic heavy-ion
// collisions: it samples minimum-bias nucleon configurations, computes
// reduced-thickness profiles, and records per-event observables.
//
// Usage:
//
//	trento run [A B]        - Generate events for a projectile pair
//	trento species          - List built-in nuclear species
//	trento events           - Browse stored events interactively
//	trento serve            - Serve the event browser over SSH
//
// Global flags:
//
//	--seed <value>   - RNG seed for reproducible runs (<= 0: entropy)
//	--db <path>      - Events database path (default: ~/.trento/events.db)
//	--config <path>  - Run configuration YAML
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trento",
	Short: "Reduced Thickness Event-by-event Nuclear Topology",
	Long: `trento is a Monte Carlo event generator for the initial state of
relativistic heavy-ion collisions. It samples impact parameters and
nucleon positions, selects minimum-bias collisions, and computes
reduced-thickness profiles and their eccentricities.

Available commands:
  run      - Generate events for a projectile pair
  species  - List built-in nuclear species
  events   - Browse stored events interactively
  serve    - Serve the event browser over SSH

Examples:
  trento run Pb Pb --events 10000
  trento run p Pb --b-max 8 --ncoll
  trento run U U --beta2-mean 0.28 --beta2-std 0.02
  trento species
  trento events
  trento serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (<= 0 = entropy-based)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.trento/events.db", "Path to events database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to run configuration YAML")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(speciesCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(serveCmd)
}
