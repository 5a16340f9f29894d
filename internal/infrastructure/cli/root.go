package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nuniesmith/fks-main/internal/app"
	"github.com/nuniesmith/fks-main/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	Out     io.Writer
	Err     io.Writer
}

type globalFlags struct {
	configPath      string
	registryPath    string
	metricsTextfile string
	verbose         bool
	noColor         bool
	trace           bool
}

// NewRootCmd wires the cobra root command. The container is built lazily,
// once the global flags are parsed. The returned func releases it and must be
// called after Execute, whatever the outcome.
func NewRootCmd(opts Options) (*cobra.Command, func(context.Context) error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	var (
		flags     globalFlags
		container *app.Container
	)
	provide := func(ctx context.Context) (*app.Container, error) {
		if container != nil {
			return container, nil
		}
		c, err := app.BuildContainer(ctx, app.Options{
			ConfigPath:      flags.configPath,
			RegistryPath:    flags.registryPath,
			MetricsTextfile: flags.metricsTextfile,
			Verbose:         opts.Verbose || flags.verbose,
			Trace:           flags.trace,
			Color:           !flags.noColor && isTerminal(opts.Out),
			Out:             opts.Out,
			Err:             opts.Err,
		})
		if err != nil {
			return nil, err
		}
		container = c
		return c, nil
	}

	root := &cobra.Command{
		Use:   "fks",
		Short: "FKS - platform readiness checks and test orchestration",
		Long:  "fks verifies that the local platform is ready to run and orchestrates per-service test suites behind that gate.",

		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default: fks.yaml, config/fks.yaml, ~/.fks/config.yaml)")
	pf.StringVar(&flags.registryPath, "registry", "", "Service registry file, overrides the configured search paths")
	pf.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics for this run to a textfile")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&flags.trace, "trace", false, "Export trace spans to stderr")

	root.AddCommand(commands.NewPreflightCommand(provide))
	root.AddCommand(commands.NewTestCommand(provide))
	root.AddCommand(commands.NewVersionCommand())

	closeFn := func(ctx context.Context) error {
		if container == nil {
			return nil
		}
		return container.Close(ctx)
	}
	return root, closeFn
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
