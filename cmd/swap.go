package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mock-swap/pkg/parser"
	"mock-swap/pkg/session"
)

var noConfirm bool

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Fill the form and submit one simulated swap",
	Long: `Connect the mock wallet, fill the swap form, show the quote and submit
the swap to the simulated executor. Press Ctrl+C while swapping to cancel.

Examples:
  mock-swap swap 1 ETH to USDC
  mock-swap swap 2 WBTC to UNI --yes
  mock-swap swap 100 USDC to LINK --delay 5s --failure-rate 0.5`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	addSwapFlags(swapCmd)
}

func runSwap(cmd *cobra.Command, args []string) {
	// Parse the command
	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustApp(cmd)
	ctx := context.Background()

	if err := a.store.Connect(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := a.store.Fill(swapReq.SourceToken, swapReq.DestToken, swapReq.Amount); err != nil {
		printError(err)
		os.Exit(1)
	}

	state := a.store.Snapshot()
	q, err := a.quotes.Quote(ctx, state.FromAmount, state.FromToken.Symbol, state.ToToken.Symbol)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		displayQuote(q, state.Slippage.String())
		if verbose {
			displayForm(a.store.View())
		}
	}

	// Ask for confirmation
	if !noConfirm && !jsonOutput {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	id, done, err := a.store.Submit(ctx)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Swapping..."
		s.Start()
	}

	outcome := waitForSwap(a.store, done)
	if !jsonOutput {
		s.Stop()
	}

	execution, lerr := a.store.Ledger().Get(id)

	if jsonOutput {
		if lerr != nil {
			printJSON(map[string]string{"error": lerr.Error()})
		} else {
			printJSON(execution)
		}
		if outcome != nil {
			os.Exit(1)
		}
		return
	}

	switch {
	case outcome == nil:
		color.Green("\n✓ Swap completed")
	case errors.Is(outcome, session.ErrSwapCancelled):
		color.Yellow("\nSwap cancelled")
	default:
		color.Red("\n✗ %v", outcome)
	}
	if lerr == nil {
		displayExecution(execution)
	}
	if outcome != nil {
		os.Exit(1)
	}
}

// waitForSwap waits for the outcome, cancelling the swap on Ctrl+C
func waitForSwap(store *session.Store, done <-chan error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-done:
		return err
	case <-sigCh:
		store.Cancel()
		return <-done
	}
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
