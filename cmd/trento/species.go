package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaximVirta/trento/internal/nucleus"
)

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "List built-in nuclear species",
	Long:  `Shows the species table with Woods-Saxon and deformation parameters.`,
	Run:   runSpecies,
}

func runSpecies(cmd *cobra.Command, args []string) {
	all := nucleus.List()

	fmt.Println("Built-in species:")
	fmt.Println()

	fmt.Printf("  %-4s  %4s  %7s  %7s  %7s  %7s  %7s\n",
		"Name", "A", "R [fm]", "a [fm]", "beta2", "beta3", "beta4")
	fmt.Printf("  %-4s  %4s  %7s  %7s  %7s  %7s  %7s\n",
		"----", "---", "------", "------", "-----", "-----", "-----")

	for _, s := range all {
		fmt.Printf("  %-4s  %4d  %7.3f  %7.3f  %7.3f  %7.3f  %7.3f\n",
			s.Name, s.MassNumber, s.WSRadius, s.WSDiffusive,
			s.DefaultBeta2, s.DefaultBeta3, s.DefaultBeta4)
	}

	fmt.Println()
	fmt.Println("Run 'trento run <A> <B>' to collide a pair.")
}
