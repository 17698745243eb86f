package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFiles []string

func main() {
	rootCmd := &cobra.Command{
		Use:          "ddi",
		Short:        "User service assembled by the ddi container",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files, earlier files win, process env overrides all")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(consumeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
