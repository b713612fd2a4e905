// Package main implements reasonctl, the driver shell around the
// reasoning kernel: a small cobra CLI that boots the kernel with its
// full prover portfolio, persists its state between runs, and exposes
// assert/retract/prove/check/status as subcommands.
//
// This file is the entry point and command-registration hub, split
// across multiple cmd_*.go files the way cmd/nerd/main.go splits its
// own subcommands out of main.go.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reasonkernel/internal/axioms"
	"reasonkernel/internal/config"
	"reasonkernel/internal/kernel"
	"reasonkernel/internal/logging"
	"reasonkernel/internal/normalize"
	"reasonkernel/internal/persistence"
	"reasonkernel/internal/provers"
)

var (
	// Global flags
	workspace  string
	configPath string
	verbose    bool
	timeout    time.Duration

	// Boot state, populated by PersistentPreRunE and torn down by
	// PersistentPostRunE.
	logger      *zap.Logger
	cfg         *config.Config
	k           *kernel.Kernel
	statePath   string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "reasonctl",
	Short: "reasonctl - a neuro-symbolic first-order logic reasoning kernel",
	Long: `reasonctl drives a first-order logic reasoning kernel: a knowledge
base of facts, a portfolio of provers (pattern matching, a functional-
constraint solver, an SMT adapter, and an external knowledge oracle), and
a proof cache layered over the two.

Logic decides truth; the provers are consulted in portfolio order and the
first definitive verdict wins.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if workspace != "" {
			cfg.Workspace = workspace
		}
		if verbose {
			cfg.Logging.Verbose = true
		}

		logDir := filepath.Join(cfg.Workspace, ".reasonkernel", "logs")
		logger, err = logging.New(logging.Config{Dir: logDir, Verbose: cfg.Logging.Verbose})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
			logger, _ = logging.New(logging.Config{Verbose: cfg.Logging.Verbose})
		}
		// Tag every log line from this invocation with a short correlation
		// ID, the way internal/campaign mints a short uuid-derived ID per
		// campaign run.
		invocationID := uuid.New().String()[:8]
		logger = logger.With(zap.String("invocation", invocationID))

		statePath = cfg.PersistencePath()
		k = bootKernel(cfg, logger.Sugar())

		artifact, err := persistence.Load(statePath)
		if err != nil {
			logger.Warn("failed to load persisted state", zap.Error(err))
		} else {
			restoreState(k, artifact)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if k == nil {
			return nil
		}
		if err := saveState(k, statePath); err != nil {
			return fmt.Errorf("failed to persist kernel state: %w", err)
		}
		return nil
	},
}

// bootKernel wires a fresh Kernel from cfg, the way
// coresys.GetOrBootCortex wires codeNERD's cortex: one prover per
// concrete implementation, each wrapped in provers.Safe so a panicking
// prover degrades to Unknown instead of crashing the CLI.
func bootKernel(cfg *config.Config, log kernel.DiagnosticLogger) *kernel.Kernel {
	synonyms := normalize.DefaultSynonyms()
	norm := normalize.New(synonyms, log)

	pattern := provers.Safe(provers.NewPatternProver())
	functional := provers.Safe(provers.NewFunctionalProver(axioms.DefaultFunctionalPredicates()))
	smt := provers.Safe(provers.NewSMTProver(cfg.Provers.Z3Path))

	oracleCfg := provers.OracleConfig{
		Endpoint:         cfg.Oracle.Endpoint,
		HTTPTimeout:      cfg.OracleHTTPTimeout(),
		CacheTTL:         cfg.OracleCacheTTL(),
		OraclePredicates: axioms.DefaultOraclePredicates(),
	}
	oracle := provers.Safe(provers.NewOracleProver(oracleCfg))

	kn := kernel.New(kernel.Config{
		Normalizer:       norm,
		Pattern:          pattern,
		Functional:       functional,
		AllProvers:       []provers.Prover{pattern, functional, smt, oracle},
		OraclePredicates: axioms.DefaultOraclePredicates(),
		ProverBudget:     cfg.ProverBudget(),
		Log:              log,
	})

	for _, axiom := range axioms.DefaultFunctionalDependencyAxioms() {
		if accepted, reason := kn.AddFact(axiom.String() + "."); !accepted {
			log.Debugf("startup axiom rejected: %s (%s)", axiom.String(), reason)
		}
	}

	return kn
}

// restoreState replays a persisted artifact's facts, proof cache, and
// portfolio stats into a freshly booted kernel. Facts are re-asserted
// through AddFact rather than inserted directly, so a corrupted or
// hand-edited artifact degrades to "some facts silently re-rejected"
// rather than resurrecting an inconsistent KB.
func restoreState(kn *kernel.Kernel, artifact persistence.Artifact) {
	for _, fact := range artifact.Facts {
		kn.AddFact(fact)
	}
	kn.ProofCache().Restore(persistence.RestoreProofCache(artifact.ProofCache))
	kn.PortfolioManager().Restore(artifact.PortfolioStats)
}

// saveState snapshots the kernel into an Artifact and writes it to
// path.
func saveState(kn *kernel.Kernel, path string) error {
	artifact := persistence.Artifact{
		SchemaVersion:  persistence.SchemaVersion,
		Facts:          kn.Snapshot(),
		ProofCache:     persistence.BuildProofCache(kn.ProofCache().Snapshot()),
		PortfolioStats: kn.PortfolioManager().Snapshot(),
	}
	return persistence.Save(path, artifact)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory (defaults to config or cwd)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "reasonctl.yaml", "path to a reasonctl YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	rootCmd.AddCommand(assertCmd)
	rootCmd.AddCommand(retractCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
