package cmd

import (
	"fmt"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/deploy"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/spf13/cobra"
)

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Show the factory's token creation fee",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		orch := deploy.NewOrchestrator(sess.Registry, sess.Conn, sess.Bus)
		defer orch.Close()

		fee, err := orch.CreationFee()
		if err != nil {
			return err
		}

		p := sess.Profile
		fmt.Printf("%s %s %s %s\n",
			ui.Meta("Creation fee on"),
			ui.ChainName(p.DisplayName)+ui.Meta(":"),
			ui.Val(chain.FormatUnits(fee, p.Currency.Decimals)),
			ui.Val(p.Currency.Symbol))
		return nil
	},
}
