package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quegate/quegate/internal/core/transport"
)

// NewSendCommand creates the send command.
func NewSendCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <queue> [body]",
		Short: "Send a message to a queue",
		Long:  "Send a message to a queue. The body comes from the second argument or from stdin. XML bodies are negotiated into a broker-acceptable form before sending.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()
			return doSend(cmd, args, rt)
		},
	}

	cmd.Flags().StringP("label", "L", "", "Message label")
	cmd.Flags().IntP("priority", "Y", transport.DefaultPriority, "Message priority (0-7)")
	cmd.Flags().StringP("correlation-id", "C", "", "Correlation ID for request/response")
	cmd.Flags().BoolP("json", "J", false, "Print the sent message as JSON")

	return cmd
}

func doSend(cmd *cobra.Command, args []string, rt *Runtime) error {
	label, _ := cmd.Flags().GetString("label")
	priority, _ := cmd.Flags().GetInt("priority")
	correlationID, _ := cmd.Flags().GetString("correlation-id")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Get message body (from args or stdin)
	var body []byte
	if len(args) > 1 {
		body = []byte(args[1])
	} else {
		var err error
		body, err = readFromStdin()
		if err != nil {
			return err
		}
	}

	opts := transport.SendOptions{
		Queue:         args[0],
		Body:          body,
		Label:         label,
		CorrelationID: correlationID,
	}
	if cmd.Flags().Changed("priority") {
		opts.Priority = &priority
	}

	msg, err := rt.Gateway.Send(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(msg)
	}
	fmt.Printf("Sent message %s to %s\n", msg.ID, msg.Queue)
	return nil
}

func readFromStdin() ([]byte, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, errors.New("no message body provided and no data in stdin")
	}
	return io.ReadAll(os.Stdin)
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
