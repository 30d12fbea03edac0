package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// NewDeclareCmd creates the declare command
func NewDeclareCmd() *cobra.Command {
	var queueName string
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "declare",
		Short: "Declare queue topology",
		Long:  "Declare the exchange, queue, and binding for a queue; with --delay, also the per-delay deferred queue",
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

			if err := q.Declare(queueName); err != nil {
				return fmt.Errorf("failed to declare topology: %w", err)
			}
			fmt.Println("Destination topology declared")

			if delay > 0 {
				name, err := q.DeclareDelayed(queueName, delay)
				if err != nil {
					return fmt.Errorf("failed to declare delayed queue: %w", err)
				}
				fmt.Printf("Delayed queue declared: %s\n", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "", "Queue name (default: configured default queue)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Also declare the deferred queue for this delay")

	return cmd
}
