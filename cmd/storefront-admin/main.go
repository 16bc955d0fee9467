package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront-admin",
	Short: "Operational tasks for the chipstore storefront",
	Long: `storefront-admin prepares the chipstore database and manages
administrator accounts. It reads the same config.yaml and environment
variables as storefront-api.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
