package cmd

import (
	"fmt"

	"github.com/dxbchain/dxbforge/internal/history"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyWatch  bool
	historyFilter string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List tokens deployed by your wallet",
	Long: `Show every token the connected wallet has deployed through the factory,
newest first. Tokens whose metadata cannot be read still appear, with
placeholder details.

With --watch the list becomes an interactive view that refreshes
periodically; type to filter by name, symbol, or address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		res := sess.Resolver.Current()
		if !res.IsReady {
			fmt.Println(ui.Warn(res.Advisory))
			return nil
		}
		p := res.Profile

		agg := history.NewAggregator(sess.Registry, sess.Conn, sess.Bus)
		defer agg.Close()

		if historyWatch {
			return ui.RunHistoryView(agg, "Token History · "+p.DisplayName, p.ExplorerUrl)
		}

		if err := agg.Refresh(); err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}

		tokens := agg.Filter(historyFilter)
		if len(tokens) == 0 {
			if historyFilter != "" {
				fmt.Println(ui.Meta("No tokens match the filter."))
			} else {
				fmt.Println(ui.Info("No tokens deployed yet."))
				fmt.Println(ui.Hint("Deploy one with: dxbforge deploy"))
			}
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "NAME", Width: 24},
			{Title: "SYMBOL", Width: 8},
			{Title: "SUPPLY", Width: 16},
			{Title: "ADDRESS", Width: 44},
		})
		for _, tok := range tokens {
			t.AddRow(ui.Row{tok.Name, tok.Symbol, tok.TotalSupply, tok.Address})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d token(s) on %s", len(tokens), p.DisplayName)))
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVarP(&historyWatch, "watch", "w", false, "interactive auto-refreshing view")
	historyCmd.Flags().StringVar(&historyFilter, "filter", "", "filter by name, symbol, or address")
}
