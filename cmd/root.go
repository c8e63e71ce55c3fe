package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mock-swap",
	Short: "A simulated token swap form for the terminal and HTTP",
	Long: `mock-swap is a self-contained token swap simulator. It keeps a swap form
(wallet, token pair, amounts, slippage) in memory, prices it from a fixed
token catalog and settles swaps with a simulated executor. Nothing touches
a chain.

Examples:
  mock-swap tokens
  mock-swap quote 2 WBTC to UNI
  mock-swap swap 1 ETH to USDC --yes
  mock-swap shell
  mock-swap serve --addr :8080`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $HOME/.mock-swap.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
