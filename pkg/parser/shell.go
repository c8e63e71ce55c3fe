package parser

import (
	"fmt"
	"sort"
	"strings"

	"mock-swap/pkg/types"
)

// Shell command names
const (
	CmdHelp       = "help"
	CmdTokens     = "tokens"
	CmdConnect    = "connect"
	CmdDisconnect = "disconnect"
	CmdAmount     = "amount"
	CmdSelect     = "select"
	CmdPick       = "pick"
	CmdClose      = "close"
	CmdFrom       = "from"
	CmdTo         = "to"
	CmdInvert     = "invert"
	CmdSettings   = "settings"
	CmdSlippage   = "slippage"
	CmdSwap       = "swap"
	CmdCancel     = "cancel"
	CmdHistory    = "history"
	CmdState      = "state"
	CmdQuit       = "quit"

	// CmdQuick fills the whole form from "<amount> <token> to <token>"
	CmdQuick = "quick"
)

// Command is one parsed shell line
type Command struct {
	Name string
	Args []string
	Swap *types.SwapRequest // set for CmdQuick
}

type commandSpec struct {
	args  int // exact argument count, -1 for "0 or 1"
	usage string
	help  string
}

var commands = map[string]commandSpec{
	CmdHelp:       {0, "help", "show this help"},
	CmdTokens:     {-1, "tokens [query]", "list tokens, optionally filtered"},
	CmdConnect:    {0, "connect", "connect the wallet"},
	CmdDisconnect: {0, "disconnect", "disconnect the wallet"},
	CmdAmount:     {-1, "amount [value]", "set the amount to sell, empty clears it"},
	CmdSelect:     {1, "select from|to", "open a token picker"},
	CmdPick:       {1, "pick <token>", "choose a token in the open picker"},
	CmdClose:      {0, "close", "close the token picker"},
	CmdFrom:       {1, "from <token>", "set the token to sell"},
	CmdTo:         {1, "to <token>", "set the token to buy"},
	CmdInvert:     {0, "invert", "swap the two sides"},
	CmdSettings:   {0, "settings", "toggle the settings panel"},
	CmdSlippage:   {1, "slippage <percent>", "set slippage tolerance (0.1 to 5.0)"},
	CmdSwap:       {0, "swap", "submit the swap"},
	CmdCancel:     {0, "cancel", "cancel the running swap"},
	CmdHistory:    {0, "history", "list swaps from this session"},
	CmdState:      {0, "state", "redraw the form"},
	CmdQuit:       {0, "quit", "leave the shell"},
}

var aliases = map[string]string{
	"?":    CmdHelp,
	"h":    CmdHelp,
	"exit": CmdQuit,
	"q":    CmdQuit,
	"flip": CmdInvert,
	"ls":   CmdTokens,
}

// ParseShellCommand parses one line typed into the shell. A blank line
// returns nil without error.
func ParseShellCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	// "1 ETH to USDC" and "swap 1 ETH to USDC"
	if len(fields) >= 4 {
		req, err := ParseSwapCommand(line)
		if err != nil {
			return nil, err
		}
		return &Command{Name: CmdQuick, Swap: req}, nil
	}

	name := strings.ToLower(fields[0])
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	args := fields[1:]

	def, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command '%s', type 'help' for a list", fields[0])
	}

	switch {
	case def.args == -1 && len(args) > 1:
		return nil, fmt.Errorf("usage: %s", def.usage)
	case def.args >= 0 && len(args) != def.args:
		return nil, fmt.Errorf("usage: %s", def.usage)
	}

	switch name {
	case CmdPick, CmdFrom, CmdTo:
		args = []string{NormalizeTokenSymbol(args[0])}
	case CmdSelect:
		args = []string{strings.ToLower(args[0])}
	}

	return &Command{Name: name, Args: args}, nil
}

// HelpLines returns "usage  description" rows sorted by command name
func HelpLines() [][2]string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([][2]string, 0, len(names)+1)
	for _, name := range names {
		lines = append(lines, [2]string{commands[name].usage, commands[name].help})
	}
	lines = append(lines, [2]string{"<amount> <token> to <token>", "fill the form in one step"})
	return lines
}
