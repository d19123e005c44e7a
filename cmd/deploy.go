package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/deploy"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/spf13/cobra"
)

var (
	deployName   string
	deploySymbol string
	deploySupply string
	deployDesc   string
	deployAmount string
	deployYes    bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a new token through the factory",
	Long: `Deploy an ERC-20 token through the DXB token factory.

Missing parameters are prompted interactively. The payment amount must
cover the factory's creation fee; when --amount is omitted the fee itself
is used.

Examples:
  dxbforge deploy --name "My Token" --symbol MTK --supply 1000000
  dxbforge deploy                                  # fully interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		orch := deploy.NewOrchestrator(sess.Registry, sess.Conn, sess.Bus)
		defer orch.Close()

		res := sess.Resolver.Current()
		if !res.IsReady {
			return errors.New(res.Advisory)
		}
		p := res.Profile

		fee, err := orch.CreationFee()
		if err != nil {
			return fmt.Errorf("reading creation fee: %w", err)
		}
		feeStr := chain.FormatUnits(fee, p.Currency.Decimals)

		if deployName == "" {
			deployName = ui.PromptInput("Token name")
		}
		if deploySymbol == "" {
			deploySymbol = ui.PromptInput("Symbol")
		}
		if deploySupply == "" {
			deploySupply = ui.PromptInput("Total supply (whole tokens)")
		}
		if deployAmount == "" {
			deployAmount = feeStr
		}

		req := deploy.Request{
			Name:          deployName,
			Symbol:        deploySymbol,
			TotalSupply:   deploySupply,
			Description:   deployDesc,
			PaymentAmount: deployAmount,
		}

		if problems := orch.Validate(req); len(problems) > 0 {
			fields := make([]string, 0, len(problems))
			for f := range problems {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Println(ui.Err(problems[f]))
			}
			return errors.New("deployment aborted")
		}

		fmt.Println(ui.KeyValueBlock("Deployment", [][2]string{
			{"Network", p.DisplayName},
			{"Token", req.Name},
			{"Symbol", req.Symbol},
			{"Supply", req.TotalSupply},
			{"Fee", feeStr + " " + p.Currency.Symbol},
			{"Payment", req.PaymentAmount + " " + p.Currency.Symbol},
			{"Deployer", sess.Conn.Signer().Address()},
		}))

		if !deployYes && !ui.ConfirmDanger("Submit this deployment?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		sp := ui.NewSpinner("Deploying token… waiting for confirmation")
		sp.Start()
		tx, err := orch.Deploy(ctx, req)
		sp.Stop()

		if err != nil {
			if tx != nil && tx.Hash != "" {
				fmt.Println(ui.Err("Deployment failed: " + err.Error()))
				fmt.Println(ui.Hint("Transaction: " + p.ExplorerTxURL(tx.Hash)))
				return errors.New("deployment failed")
			}
			return err
		}

		fmt.Println(ui.Success("Token deployed"))
		fmt.Println(ui.Hint("Transaction: " + p.ExplorerTxURL(tx.Hash)))
		if tx.DeployedTokenAddress != "" {
			fmt.Printf("  %s %s\n", ui.Meta("Token address:"), ui.Addr(tx.DeployedTokenAddress))
			fmt.Println(ui.Hint("Explorer: " + p.ExplorerAddressURL(tx.DeployedTokenAddress)))
		} else {
			fmt.Println(ui.Warn("Token address not yet indexed; check the transaction on the explorer."))
		}
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployName, "name", "", "token name (min 3 characters)")
	deployCmd.Flags().StringVar(&deploySymbol, "symbol", "", "token symbol (2-10 characters)")
	deployCmd.Flags().StringVar(&deploySupply, "supply", "", "total supply in whole tokens")
	deployCmd.Flags().StringVar(&deployDesc, "description", "", "optional description (kept locally)")
	deployCmd.Flags().StringVar(&deployAmount, "amount", "", "payment amount (default: the creation fee)")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "skip the confirmation prompt")
}
