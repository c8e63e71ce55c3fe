package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mock-swap/pkg/parser"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-token> to <dest-token>",
	Short: "Price a swap without submitting it",
	Long: `Compute the output amount, rate and USD values for a swap at catalog
prices.

Examples:
  mock-swap quote 1 ETH to USDC
  mock-swap quote 2 wbtc to uni --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	a := mustApp(cmd)

	q, err := a.quotes.Quote(context.Background(), swapReq.Amount, swapReq.SourceToken, swapReq.DestToken)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(q)
		return
	}
	displayQuote(q, a.store.Snapshot().Slippage.String())
}
