package main

import (
	"fmt"
	"os"

	"github.com/brandloom-ai/brandloom/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brandloomd",
		Short: "Brandloom daemon and CLI",
		Long:  "Brandloom daemon for running the rewrite API server and managing the vector collections",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IndexCmd())
	rootCmd.AddCommand(cli.RewriteCmd())
	rootCmd.AddCommand(cli.DedupeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
