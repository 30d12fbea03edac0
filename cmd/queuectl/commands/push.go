package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/defermq/defermq/internal/queue"
)

// NewPushCmd creates the push command
func NewPushCmd() *cobra.Command {
	var queueName string
	var jobType string
	var delay time.Duration
	var priority int

	cmd := &cobra.Command{
		Use:   "push [payload]",
		Short: "Push a job onto a queue",
		Long:  "Publish a job with the given JSON payload, optionally deferred with --delay",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := "{}"
			if len(args) == 1 {
				payload = args[0]
			}
			if !json.Valid([]byte(payload)) {
				return fmt.Errorf("payload is not valid JSON")
			}

			q, err := connect()
			if err != nil {
				return err
			}
			defer func() {
				if err := q.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close connection: %v\n", err)
				}
			}()

			job := queue.NewJob(jobType, json.RawMessage(payload))
			opts := queue.PushOptions{Queue: queueName, Delay: delay}
			if cmd.Flags().Changed("priority") {
				if priority < 0 || priority > 255 {
					return fmt.Errorf("priority must be between 0 and 255")
				}
				p := uint8(priority)
				opts.Priority = &p
			}

			result, err := q.Push(context.Background(), job, opts)
			if err != nil {
				return fmt.Errorf("push %s: %w", result, err)
			}

			fmt.Printf("Job %s pushed (%s)\n", job.ID, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "", "Queue name (default: configured default queue)")
	cmd.Flags().StringVar(&jobType, "type", "echo", "Job type")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Defer delivery by this duration")
	cmd.Flags().IntVar(&priority, "priority", 0, "Message priority (default: configured priority)")

	return cmd
}
