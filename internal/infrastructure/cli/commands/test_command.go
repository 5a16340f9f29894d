package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// NewTestCommand creates the test command
func NewTestCommand(provide ContainerProvider) *cobra.Command {
	var opts domain.TestRunOptions

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run service test suites after a full pre-flight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := provide(cmd.Context())
			if err != nil {
				return err
			}
			if container.TestService == nil {
				return errors.New(ErrTestServiceUnavailable)
			}
			_, err = container.TestService.Run(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.ServiceFilter, "service", "s", "", "Only test services whose name contains this value")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", true, "Run service suites concurrently")
	cmd.Flags().BoolVar(&opts.Coverage, "coverage", false, "Collect coverage into the coverage directory")
	return cmd
}
