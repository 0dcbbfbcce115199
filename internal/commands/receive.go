package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
)

// NewReceiveCommand creates the receive command (destructive read).
func NewReceiveCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receive <queue>",
		Short: "Receive a message from a queue",
		Long:  "Remove the front message from the queue and print its body to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()
			return doReceive(cmd, args, rt, false)
		},
	}
	addReceiveFlags(cmd)
	return cmd
}

// NewPeekCommand creates the peek command (non-destructive read).
func NewPeekCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peek <queue>",
		Short: "Peek at the front message without removing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()
			return doReceive(cmd, args, rt, true)
		},
	}
	addReceiveFlags(cmd)
	return cmd
}

func addReceiveFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", 0, "How long to wait for a message (default: configured receive timeout)")
	cmd.Flags().BoolP("json", "J", false, "Print the message as JSON instead of the raw body")
	cmd.Flags().BoolP("meta", "m", false, "Print message metadata to stderr")
}

func doReceive(cmd *cobra.Command, args []string, rt *Runtime, peek bool) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	meta, _ := cmd.Flags().GetBool("meta")

	timeout := rt.Gateway.DefaultReceiveTimeout()
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetDuration("timeout")
	}

	var msg *models.MessageDTO
	var err error
	if peek {
		msg, err = rt.Gateway.Peek(context.Background(), args[0], timeout)
	} else {
		msg, err = rt.Gateway.Receive(context.Background(), args[0], timeout)
	}
	if err != nil {
		if qerrors.IsNoMessage(err) {
			return errors.New("no message available")
		}
		return err
	}

	if jsonOutput {
		return printJSON(msg)
	}
	if meta {
		fmt.Fprintf(os.Stderr, "ID: %s\n", msg.ID)
		fmt.Fprintf(os.Stderr, "Label: %s\n", msg.Label)
		fmt.Fprintf(os.Stderr, "Priority: %d\n", msg.Priority)
		if msg.CorrelationID != "" {
			fmt.Fprintf(os.Stderr, "Correlation ID: %s\n", msg.CorrelationID)
		}
		if !msg.SentAt.IsZero() {
			fmt.Fprintf(os.Stderr, "Sent at: %s\n", msg.SentAt.Format(time.RFC3339))
		}
	}
	fmt.Println(msg.Body)
	return nil
}
