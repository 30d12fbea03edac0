package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPopCmd creates the pop command
func NewPopCmd() *cobra.Command {
	var queueName string
	var requeue bool

	cmd := &cobra.Command{
		Use:   "pop",
		Short: "Fetch one job from a queue",
		Long:  "Fetch the next available job and print it; the job is acknowledged unless --requeue is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := connect()
			if err != nil {
				return err
			}
			defer func() {
				if err := q.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close connection: %v\n", err)
				}
			}()

			msg, err := q.Pop(context.Background(), queueName)
			if err != nil {
				return fmt.Errorf("failed to pop: %w", err)
			}
			if msg == nil {
				fmt.Println("No job available")
				return nil
			}

			pretty, err := json.MarshalIndent(msg.GetJob(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render job: %w", err)
			}
			fmt.Printf("Queue: %s\n%s\n", msg.Queue, pretty)

			if requeue {
				if err := msg.Reject(true); err != nil {
					return fmt.Errorf("failed to requeue: %w", err)
				}
				fmt.Println("Job requeued")
				return nil
			}
			if err := msg.Ack(); err != nil {
				return fmt.Errorf("failed to ack: %w", err)
			}
			fmt.Println("Job acknowledged")
			return nil
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "", "Queue name (default: configured default queue)")
	cmd.Flags().BoolVar(&requeue, "requeue", false, "Put the job back instead of acknowledging it")

	return cmd
}
