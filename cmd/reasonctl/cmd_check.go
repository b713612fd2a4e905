package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCmd reports whether a formula is consistent with the current
// knowledge base, without mutating it.
var checkCmd = &cobra.Command{
	Use:   "check <formula>",
	Short: "Check whether a formula is consistent with the knowledge base",
	Long: `Runs the same two-part consistency check assert performs before
insertion — negation-provability against the pattern prover, then a
functional-dependency check — but never mutates the knowledge base.

Example:
  reasonctl check "Capital(Germany,Munich)."`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	consistent, reason := k.CheckConsistency(args[0])
	fmt.Printf("consistent=%t: %s\n", consistent, reason)
	return nil
}
