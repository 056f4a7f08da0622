package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/corpusai/internal/cli"
	"github.com/cloo-solutions/corpusai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "corpusd",
		Short: "Corpus daemon and CLI",
		Long:  "Corpus daemon for running the knowledge base API server and managing the corpus",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ImportCmd())
	rootCmd.AddCommand(admin.SearchCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
