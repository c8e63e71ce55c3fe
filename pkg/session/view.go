package session

import (
	"fmt"

	"mock-swap/pkg/catalog"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/wallet"
)

// TokenView is a catalog row as the picker shows it
type TokenView struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Price   string `json:"price"`
	Balance string `json:"balance"`
}

// SideView is one half of the swap form
type SideView struct {
	Token   TokenView `json:"token"`
	Amount  string    `json:"amount"`
	USD     string    `json:"usd"`
	Balance string    `json:"balance,omitempty"` // only when connected
}

// WalletView is the header wallet button
type WalletView struct {
	Connected  bool   `json:"connected"`
	Connecting bool   `json:"connecting"`
	Address    string `json:"address,omitempty"`
	Label      string `json:"label"`
	Error      string `json:"error,omitempty"`
}

// View is a render-ready projection of a State
type View struct {
	Wallet         WalletView  `json:"wallet"`
	From           SideView    `json:"from"`
	To             SideView    `json:"to"`
	Rate           string      `json:"rate,omitempty"`
	PriceImpact    string      `json:"price_impact,omitempty"`
	Slippage       string      `json:"slippage"`
	SettingsOpen   bool        `json:"settings_open"`
	Selector       Selector    `json:"selector"`
	SelectorTokens []TokenView `json:"selector_tokens,omitempty"`
	Task           TaskStatus  `json:"task"`
	TaskError      string      `json:"task_error,omitempty"`
	LastSwapID     string      `json:"last_swap_id,omitempty"`
	Button         ButtonState `json:"button"`
}

// NewTokenView formats a catalog token
func NewTokenView(t catalog.Token) TokenView {
	return TokenView{
		Symbol:  t.Symbol,
		Name:    t.Name,
		Icon:    t.Icon,
		Price:   quote.FormatUSD(t.Price),
		Balance: quote.FormatBalance(t.Balance),
	}
}

// NewView projects s for rendering. tokens fills the picker when one is open.
func NewView(s State, tokens []catalog.Token) View {
	v := View{
		Wallet: WalletView{
			Connected:  s.WalletConnected,
			Connecting: s.WalletConnecting,
			Address:    s.WalletAddress,
			Error:      s.WalletError,
		},
		From:         newSideView(s.FromToken, s.FromAmount, s.WalletConnected),
		To:           newSideView(s.ToToken, s.ToAmount, s.WalletConnected),
		Slippage:     s.Slippage.String(),
		SettingsOpen: s.SettingsOpen,
		Selector:     s.ActiveSelector,
		Task:         s.Task,
		TaskError:    s.TaskError,
		LastSwapID:   s.LastSwapID,
		Button:       Button(s),
	}

	switch {
	case s.WalletConnected:
		v.Wallet.Label = wallet.ShortAddress(s.WalletAddress)
	case s.WalletConnecting:
		v.Wallet.Label = "Connecting…"
	default:
		v.Wallet.Label = "Connect Wallet"
	}

	if s.FromAmount != "" && s.ToAmount != "" {
		if rate, err := quote.Rate(s.FromToken.Price, s.ToToken.Price); err == nil {
			v.Rate = fmt.Sprintf("1 %s = %s %s", s.FromToken.Symbol, quote.FormatRate(rate), s.ToToken.Symbol)
			v.PriceImpact = quote.PriceImpact
		}
	}

	if s.ActiveSelector != SelectorNone {
		v.SelectorTokens = make([]TokenView, 0, len(tokens))
		for _, t := range tokens {
			v.SelectorTokens = append(v.SelectorTokens, NewTokenView(t))
		}
	}

	return v
}

func newSideView(t catalog.Token, amount string, connected bool) SideView {
	side := SideView{
		Token:  NewTokenView(t),
		Amount: amount,
		USD:    quote.USDValue(amount, t.Price),
	}
	if connected {
		side.Balance = quote.FormatBalance(t.Balance)
	}
	return side
}

// View projects the current state
func (s *Store) View() View {
	return NewView(s.Snapshot(), s.catalog.Tokens())
}
