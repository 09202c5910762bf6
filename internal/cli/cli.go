// Package cli wires configuration, logging and the render pipeline into the
// server and render commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	httphandlers "placeholder/internal/http"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	serveCmd := newServeCmd()

	root := &cobra.Command{
		Use:           "placeholder",
		Short:         "Placeholder image service",
		Long:          `Serves placeholder images generated from the URL, e.g. /800x600/ffffff/000000?text=Hello.`,
		Version:       httphandlers.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serveCmd.RunE,
	}

	root.AddCommand(serveCmd)
	root.AddCommand(newRenderCmd())

	return root
}

// Execute runs the command tree until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
