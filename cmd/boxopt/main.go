package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/boxopt/pkg/lib/signals"
)

var (
	errUnsat    = errors.New("hard formula is unsatisfiable")
	errMismatch = errors.New("scores differ from the reference")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUnsat):
		return 2
	case errors.Is(err, errMismatch):
		return 3
	}
	return 1
}

type globalOptions struct {
	debug bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "boxopt",
		Short:        "Box optimization of pseudo-Boolean objectives over a shared CNF formula",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "use debug log level")

	cmd.AddCommand(
		newSolveCmd(g),
		newBenchCmd(g),
		newVersionCmd(),
	)
	return cmd
}

// setup returns the logger and a signal aware context shared by the
// subcommands.
func (g *globalOptions) setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *logrus.Logger) {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	if g.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.Infof("log level %s", logger.Level)

	ctx, cancel := signals.WithShutdown(context.Background(), logger)
	return ctx, cancel, logger
}
