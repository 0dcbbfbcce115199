package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command. It reports the configured
// endpoint and probes the backend for reachability.
func NewStatusCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			// A fresh process starts disconnected; connect so the snapshot
			// reflects the broker, not this process.
			if err := rt.Gateway.Connect(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			health := rt.Gateway.Status()
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(health)
			}

			fmt.Printf("State:      %s\n", health.StateText)
			fmt.Printf("Backend:    %s\n", health.Backend)
			fmt.Printf("Host:       %s\n", health.Host)
			if health.Port > 0 {
				fmt.Printf("Port:       %d\n", health.Port)
			}
			fmt.Printf("Reconnects: %d\n", health.Reconnects)
			if health.LastError != "" {
				fmt.Printf("Last error: %s\n", health.LastError)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("json", "J", false, "Print the status as JSON")
	return cmd
}
