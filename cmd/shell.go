package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"mock-swap/pkg/parser"
	"mock-swap/pkg/session"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive swap form",
	Long: `Open the swap form in an interactive shell. Type 'help' for the list of
commands.

Examples:
  mock-swap shell
  mock-swap shell --delay 5s`,
	Args: cobra.NoArgs,
	Run:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	addSwapFlags(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) {
	a := mustApp(cmd)

	sh := newShell(a.store)
	stop := sh.watch()
	defer stop()

	color.Cyan("mock-swap shell. Type 'help' for commands, 'quit' to leave.")
	displayForm(a.store.View())

	if err := sh.run(os.Stdin); err != nil {
		printError(err)
		os.Exit(1)
	}
}

type shell struct {
	store *session.Store
	ctx   context.Context
}

func newShell(store *session.Store) *shell {
	return &shell{store: store, ctx: context.Background()}
}

// run reads commands until quit or EOF
func (sh *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		command, err := parser.ParseShellCommand(scanner.Text())
		if err != nil {
			color.Red("%v", err)
			continue
		}
		if command == nil {
			continue
		}

		quit, redraw, err := sh.execute(command)
		if err != nil {
			color.Red("%v", err)
			continue
		}
		if quit {
			return nil
		}
		if redraw {
			displayForm(sh.store.View())
		}
	}
}

// execute applies one command. redraw reports whether the form changed.
func (sh *shell) execute(command *parser.Command) (quit, redraw bool, err error) {
	store := sh.store

	switch command.Name {
	case parser.CmdHelp:
		displayHelp()
		return false, false, nil

	case parser.CmdTokens:
		query := ""
		if len(command.Args) > 0 {
			query = command.Args[0]
		}
		tokens := store.Catalog().Filter(query)
		views := make([]session.TokenView, 0, len(tokens))
		for _, t := range tokens {
			views = append(views, session.NewTokenView(t))
		}
		displayTokens(views)
		return false, false, nil

	case parser.CmdConnect:
		err = store.Connect(sh.ctx)

	case parser.CmdDisconnect:
		store.Disconnect()

	case parser.CmdAmount:
		amount := ""
		if len(command.Args) > 0 {
			amount = command.Args[0]
		}
		err = store.SetFromAmount(amount)

	case parser.CmdSelect:
		var role session.Selector
		role, err = session.ParseSelector(command.Args[0])
		if err == nil && role == session.SelectorNone {
			err = fmt.Errorf("usage: select from|to")
		}
		if err == nil {
			store.OpenSelector(role)
		}

	case parser.CmdPick:
		err = store.Pick(command.Args[0])

	case parser.CmdClose:
		store.CloseSelector()

	case parser.CmdFrom:
		err = store.SelectToken(session.SelectorFrom, command.Args[0])

	case parser.CmdTo:
		err = store.SelectToken(session.SelectorTo, command.Args[0])

	case parser.CmdInvert:
		err = store.Invert()

	case parser.CmdSettings:
		store.ToggleSettings()

	case parser.CmdSlippage:
		var value decimal.Decimal
		value, err = decimal.NewFromString(command.Args[0])
		if err != nil {
			return false, false, fmt.Errorf("invalid slippage '%s'", command.Args[0])
		}
		applied := store.SetSlippage(value)
		if !applied.Equal(value) {
			color.Yellow("Slippage set to %s%%", applied)
		}

	case parser.CmdQuick:
		err = store.Fill(command.Swap.SourceToken, command.Swap.DestToken, command.Swap.Amount)

	case parser.CmdSwap:
		if _, _, err = store.Submit(sh.ctx); err == nil {
			color.Yellow("Swapping... type 'cancel' to abort.")
		}

	case parser.CmdCancel:
		if !store.Cancel() {
			return false, false, fmt.Errorf("no swap is running")
		}
		return false, false, nil

	case parser.CmdHistory:
		ledger := store.Ledger()
		displayHistory(ledger.List(), ledger.Stats())
		return false, false, nil

	case parser.CmdState:

	case parser.CmdQuit:
		return true, false, nil

	default:
		return false, false, fmt.Errorf("unknown command '%s'", command.Name)
	}

	if err != nil {
		return false, false, err
	}
	return false, true, nil
}

// watch reports swap outcomes as they arrive. The returned func stops it.
func (sh *shell) watch() func() {
	updates, unsubscribe := sh.store.Subscribe()

	go func() {
		prev := (<-updates).Task
		for state := range updates {
			if prev == session.TaskRunning && state.Task != session.TaskRunning {
				fmt.Println()
				switch state.Task {
				case session.TaskSucceeded:
					color.Green("✓ Swap completed")
				case session.TaskFailed:
					color.Red("✗ %s", state.TaskError)
				default:
					color.Yellow("Swap cancelled")
				}
				displayForm(session.NewView(state, sh.store.Catalog().Tokens()))
				fmt.Print("> ")
			}
			prev = state.Task
		}
	}()

	return unsubscribe
}

func displayHelp() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nCOMMAND\tDESCRIPTION")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, line := range parser.HelpLines() {
		fmt.Fprintf(w, "%s\t%s\n", line[0], line[1])
	}
	w.Flush()
	fmt.Println()
}
