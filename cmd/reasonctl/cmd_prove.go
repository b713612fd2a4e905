package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// proveCmd asks the kernel to prove or refute a goal against the
// current knowledge base.
var proveCmd = &cobra.Command{
	Use:   "prove <goal>",
	Short: "Prove, refute, or fail to decide a goal against the knowledge base",
	Long: `Runs the kernel's cache-then-portfolio proof search over the
current knowledge base: a proof-cache hit returns immediately, a miss
consults an ordered prover list (pattern match, functional-constraint
solver, SMT adapter, external oracle) until one returns Proved or
Refuted, or every prover returns Unknown.

Example:
  reasonctl prove "Capital(Germany,Munich)."`,
	Args: cobra.ExactArgs(1),
	RunE: runProve,
}

func runProve(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, timeout)
	defer cancel()

	v, reason := k.Prove(ctx, args[0])
	fmt.Printf("%s: %s\n", v, reason)
	return nil
}
