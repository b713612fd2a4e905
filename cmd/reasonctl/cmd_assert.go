package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// assertCmd adds a fact to the knowledge base.
var assertCmd = &cobra.Command{
	Use:   "assert <formula>",
	Short: "Add a fact to the knowledge base",
	Long: `Normalizes, parses, and consistency-checks formula before inserting
it into the knowledge base. A fact that contradicts the current KB —
either by syntactic negation or by a functional-dependency violation —
is rejected with a reason rather than inserted.

Example:
  reasonctl assert "Capital(Germany,Berlin)."`,
	Args: cobra.ExactArgs(1),
	RunE: runAssert,
}

func runAssert(cmd *cobra.Command, args []string) error {
	accepted, reason := k.AddFact(args[0])
	if !accepted {
		fmt.Printf("rejected: %s\n", reason)
		return nil
	}
	fmt.Printf("accepted: %s\n", reason)
	return nil
}
