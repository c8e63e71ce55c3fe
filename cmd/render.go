package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"mock-swap/pkg/history"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/session"
)

func printJSON(v interface{}) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}

func banner(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	color.Green("%s%s", strings.Repeat(" ", pad), title)
	fmt.Println(strings.Repeat("=", width))
}

// displayForm draws the swap form
func displayForm(v session.View) {
	banner("SWAP", 60)

	fmt.Printf("\n  Wallet:        %s\n", walletLabel(v.Wallet))
	if v.Wallet.Error != "" {
		fmt.Printf("                 %s\n", color.RedString("%s", v.Wallet.Error))
	}

	displaySide("You pay", v.From)
	fmt.Println("                 ⇅")
	displaySide("You receive", v.To)

	if v.Rate != "" {
		fmt.Printf("\n  Rate:          %s\n", v.Rate)
		fmt.Printf("  Price impact:  %s\n", color.GreenString("%s", v.PriceImpact))
	}
	fmt.Printf("  Slippage:      %s%%\n", v.Slippage)

	if v.SettingsOpen {
		fmt.Println(strings.Repeat("-", 60))
		color.Cyan("  Settings")
		fmt.Printf("  Slippage tolerance: %s%% (set with 'slippage <%s-%s>')\n",
			v.Slippage, session.MinSlippage.String(), session.MaxSlippage.StringFixed(1))
	}

	if v.Selector != session.SelectorNone {
		fmt.Println(strings.Repeat("-", 60))
		color.Cyan("  Select a token (%s)", v.Selector)
		displayTokenRows(v.SelectorTokens)
		fmt.Println("  Use 'pick <symbol>' or 'close'.")
	}

	switch v.Task {
	case session.TaskRunning:
		fmt.Printf("\n  Status:        %s\n", color.YellowString("swapping..."))
	case session.TaskSucceeded:
		fmt.Printf("\n  Status:        %s\n", color.GreenString("swap completed"))
	case session.TaskFailed:
		fmt.Printf("\n  Status:        %s\n", color.RedString("%s", v.TaskError))
	}

	if v.Button.Enabled {
		fmt.Printf("\n  %s\n", color.New(color.FgBlack, color.BgGreen).Sprintf(" %s ", v.Button.Label))
	} else {
		fmt.Printf("\n  %s\n", color.HiBlackString("[ %s ]", v.Button.Label))
	}

	fmt.Println(strings.Repeat("=", 60) + "\n")
}

func displaySide(title string, side session.SideView) {
	amount := side.Amount
	if amount == "" {
		amount = color.HiBlackString("0.0")
	}

	fmt.Printf("\n  %-13s  %s %s\n", title+":", amount, color.YellowString("%s %s", side.Token.Icon, side.Token.Symbol))
	line := fmt.Sprintf("~$%s", side.USD)
	if side.Balance != "" {
		line += fmt.Sprintf("   Balance: %s", side.Balance)
	}
	fmt.Printf("                 %s\n", color.HiBlackString("%s", line))
}

func walletLabel(w session.WalletView) string {
	switch {
	case w.Connected:
		return color.GreenString("%s", w.Label)
	case w.Connecting:
		return color.YellowString("%s", w.Label)
	default:
		return color.HiBlackString("%s", w.Label)
	}
}

func displayTokenRows(tokens []session.TokenView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\n  \tSYMBOL\tNAME\tPRICE (USD)\tBALANCE")
	for _, t := range tokens {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", t.Icon, color.YellowString("%s", t.Symbol), t.Name, t.Price, t.Balance)
	}
	w.Flush()
}

func displayTokens(tokens []session.TokenView) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	banner("SUPPORTED TOKENS", 60)
	displayTokenRows(tokens)
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}

func displayQuote(q *quote.Quote, slippage string) {
	banner("SWAP QUOTE", 60)

	fmt.Printf("\n  From:              %s %s (~$%s)\n", q.AmountIn, color.YellowString("%s", q.FromSymbol), q.FromUSD)
	fmt.Printf("  To:                ~%s %s (~$%s)\n", q.AmountOut, color.YellowString("%s", q.ToSymbol), q.ToUSD)
	fmt.Printf("  Rate:              1 %s = %s %s\n", q.FromSymbol, q.Rate, q.ToSymbol)
	fmt.Printf("  Price Impact:      %s\n", color.GreenString("%s", q.Impact))
	if slippage != "" {
		fmt.Printf("  Slippage:          %s%%\n", slippage)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayExecution(e history.Execution) {
	banner("SWAP STATUS", 70)

	fmt.Printf("\n  ID:              %s\n", color.CyanString("%s", e.ID))
	fmt.Printf("  Status:          %s\n", getColoredStatus(string(e.Status)))
	fmt.Printf("  Submitted:       %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
	if e.CompletionTime != nil {
		fmt.Printf("  Finished:        %s\n", e.CompletionTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Amount In:       %s %s\n", e.AmountIn, e.FromToken)
	fmt.Printf("  Amount Out:      ~%s %s\n", e.EstimatedOutput, e.ToToken)
	fmt.Printf("  Rate:            %s\n", e.Rate)
	fmt.Printf("  Slippage:        %s%%\n", e.Slippage)
	if e.TxHash != "" {
		fmt.Printf("  Tx Hash:         %s\n", color.HiBlackString("%s", e.TxHash))
	}
	if e.ErrorMessage != "" {
		fmt.Printf("  Error:           %s\n", color.RedString("%s", e.ErrorMessage))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func displayHistory(executions []history.Execution, stats history.Stats) {
	if len(executions) == 0 {
		fmt.Println("\nNo swaps yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTIMESTAMP\tAMOUNT IN\tAMOUNT OUT\tSTATUS\tTX HASH")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range executions {
		txHash := e.TxHash
		if len(txHash) > 20 {
			txHash = txHash[:10] + "..." + txHash[len(txHash)-6:]
		}
		fmt.Fprintf(w, "%s\t%s %s\t~%s %s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.AmountIn, e.FromToken,
			e.EstimatedOutput, e.ToToken,
			getColoredStatus(string(e.Status)),
			txHash)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d  Completed: %d  Failed: %d  Cancelled: %d  Pending: %d\n\n",
		stats.Total, stats.Completed, stats.Failed, stats.Cancelled, stats.Pending)
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case "COMPLETED", "SUCCEEDED":
		return color.GreenString("%s", status)
	case "PENDING", "RUNNING":
		return color.YellowString("%s", status)
	case "FAILED":
		return color.RedString("%s", status)
	case "CANCELLED":
		return color.MagentaString("%s", status)
	default:
		return status
	}
}
