package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nuniesmith/fks-main/internal/app"
)

// ContainerProvider builds the dependency graph on first use.
type ContainerProvider func(ctx context.Context) (*app.Container, error)

// NewPreflightCommand creates the preflight command
func NewPreflightCommand(provide ContainerProvider) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Run platform readiness checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := provide(cmd.Context())
			if err != nil {
				return err
			}
			if container.Gate == nil {
				return errors.New(ErrPreflightUnavailable)
			}
			return container.Gate.Gate(cmd.Context(), full)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Also run the end-to-end smoke chain")
	return cmd
}
