package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/defermq/defermq/cmd/queuectl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "queuectl",
		Short: "Operator tool for defermq queues",
		Long:  "CLI tool for declaring queue topology and pushing or inspecting jobs",
	}

	rootCmd.AddCommand(commands.NewDeclareCmd())
	rootCmd.AddCommand(commands.NewPushCmd())
	rootCmd.AddCommand(commands.NewPopCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
