package cmd

import (
	"github.com/spf13/cobra"

	"mock-swap/pkg/session"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List the tokens in the catalog",
	Long: `List the tokens available in the swap form, with their mock USD price
and wallet balance.

Examples:
  mock-swap tokens
  mock-swap tokens --symbol usd
  mock-swap tokens --json`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol or name")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp(cmd)
	tokens := a.store.Catalog().Filter(filterSymbol)

	views := make([]session.TokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, session.NewTokenView(t))
	}

	if jsonOutput {
		printJSON(views)
	} else {
		displayTokens(views)
	}
}
