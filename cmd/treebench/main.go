// Package main provides treebench, the randomized benchmark and
// self-check harness for the xtree ordered containers.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var runCheck bool

	rootCmd := &cobra.Command{
		Use:   "treebench [shift]",
		Short: "Benchmark the xtree ordered containers against the builtin map",
		Long: `treebench performs 2^shift randomized insert, lookup, copy, clear and
remove operations (shift defaults to 10) over the typed TreeMap, the
type-erased RawMap and the builtin map baseline, reporting per-phase
wall time. With --check it first replays a randomized mixed workload
with full invariant validation after every mutation.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			shift := 10
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 0 || parsed > 30 {
					return fmt.Errorf("shift must be an integer in [0, 30], got %q", args[0])
				}
				shift = parsed
			}
			count := 1 << shift

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			if runCheck {
				if err := check(logger, count); err != nil {
					return err
				}
			}
			bench(logger, count)
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&runCheck, "check", false, "validate container invariants after every mutation first")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
