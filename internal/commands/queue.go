package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quegate/quegate/internal/core/transport"
)

// NewQueueCommand creates the queue management command group.
func NewQueueCommand(factory RuntimeFactory) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue management operations (list, create, delete, purge, count, stats)",
	}

	queueCmd.AddCommand(newQueueListCommand(factory))
	queueCmd.AddCommand(newQueueCreateCommand(factory))
	queueCmd.AddCommand(newQueueUpdateCommand(factory))
	queueCmd.AddCommand(newQueueDeleteCommand(factory))
	queueCmd.AddCommand(newQueuePurgeCommand(factory))
	queueCmd.AddCommand(newQueueCountCommand(factory))
	queueCmd.AddCommand(newQueueStatsCommand(factory))

	return queueCmd
}

func newQueueListCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			queues, stale, err := rt.Gateway.ListQueues(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(queues)
			}
			if stale {
				fmt.Fprintln(os.Stderr, "warning: backend unreachable, listing served from cache")
			}
			for _, q := range queues {
				fmt.Printf("%-48s  %-8s  messages=%d\n", q.Path, q.Status, q.MessageCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("json", "J", false, "Print the listing as JSON")
	return cmd
}

func newQueueCreateCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			label, _ := cmd.Flags().GetString("label")
			maxSizeKB, _ := cmd.Flags().GetInt64("max-size-kb")
			transactional, _ := cmd.Flags().GetBool("transactional")
			journal, _ := cmd.Flags().GetBool("journal")

			queue, err := rt.Gateway.CreateQueue(context.Background(), args[0], transport.CreateOptions{
				Label:         label,
				MaxSizeKB:     maxSizeKB,
				Transactional: transactional,
				Journal:       journal,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", queue.Path)
			return nil
		},
	}
	cmd.Flags().StringP("label", "L", "", "Queue label")
	cmd.Flags().Int64("max-size-kb", 0, "Maximum queue size in KB (0 = unlimited)")
	cmd.Flags().Bool("transactional", false, "Create a transactional queue")
	cmd.Flags().Bool("journal", false, "Enable queue journaling")
	return cmd
}

func newQueueUpdateCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update queue attributes",
		Long:  "Change the mutable attributes of an existing queue. Only flags given on the command line are applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			var opts transport.UpdateOptions
			if cmd.Flags().Changed("label") {
				label, _ := cmd.Flags().GetString("label")
				opts.Label = &label
			}
			if cmd.Flags().Changed("max-size-kb") {
				maxSizeKB, _ := cmd.Flags().GetInt64("max-size-kb")
				opts.MaxSizeKB = &maxSizeKB
			}
			if cmd.Flags().Changed("journal") {
				journal, _ := cmd.Flags().GetBool("journal")
				opts.Journal = &journal
			}

			if err := rt.Gateway.UpdateQueue(context.Background(), args[0], opts); err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringP("label", "L", "", "Queue label")
	cmd.Flags().Int64("max-size-kb", 0, "Maximum queue size in KB (0 = unlimited)")
	cmd.Flags().Bool("journal", false, "Enable queue journaling")
	return cmd
}

func newQueueDeleteCommand(factory RuntimeFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a queue and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Gateway.DeleteQueue(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newQueuePurgeCommand(factory RuntimeFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <name>",
		Short: "Remove all messages from a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Gateway.PurgeQueue(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Purged %s\n", args[0])
			return nil
		},
	}
}

func newQueueCountCommand(factory RuntimeFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "count <name>",
		Short: "Print the number of messages in a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			count, err := rt.Gateway.MessageCount(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
}

func newQueueStatsCommand(factory RuntimeFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <name>",
		Short: "Show queue statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := factory()
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.Gateway.QueueStats(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(stats)
			}
			fmt.Printf("Queue:        %s\n", stats.Queue)
			fmt.Printf("Messages:     %d\n", stats.MessageCount)
			fmt.Printf("Bytes:        %d\n", stats.BytesInQueue)
			fmt.Printf("Last send:    %s\n", formatTime(stats.LastSendAt))
			fmt.Printf("Last receive: %s\n", formatTime(stats.LastReceiveAt))
			return nil
		},
	}
	cmd.Flags().BoolP("json", "J", false, "Print the statistics as JSON")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
