package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// retractCmd removes a fact from the knowledge base.
var retractCmd = &cobra.Command{
	Use:   "retract <formula>",
	Short: "Remove a fact from the knowledge base",
	Long: `Removes formula (after normalization) from the knowledge base if
present, clearing the proof cache on removal.

Example:
  reasonctl retract "Capital(Germany,Berlin)."`,
	Args: cobra.ExactArgs(1),
	RunE: runRetract,
}

func runRetract(cmd *cobra.Command, args []string) error {
	if k.RetractFact(args[0]) {
		fmt.Println("retracted")
		return nil
	}
	fmt.Println("not found")
	return nil
}
