package cmd

import (
	"context"
	"fmt"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := network.NewRegistry(cfg)
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Display", Width: 20},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 10},
			{Title: "Factory", Width: 14},
			{Title: "Default", Width: 8},
		})

		for _, p := range reg.All() {
			factory := ui.StyleSuccess.Render("deployed")
			if !p.Ready() {
				factory = ui.StyleWarning.Render("not deployed")
			}
			def := ""
			if reg.Default() != nil && p.Name == reg.Default().Name {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.ChainName(string(p.Name)),
				p.DisplayName,
				fmt.Sprintf("%d", p.ChainID),
				p.Currency.Symbol,
				factory,
				def,
			})
		}

		fmt.Println(t.Render())
		return nil
	},
}

var networkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active network and RPC health",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := network.NewRegistry(cfg)
		p, err := reg.ByName(network.Type(cfg.DefaultNetwork))
		if err != nil {
			return err
		}

		client := chain.NewEVMClient(p.RPCUrl, retryFromConfig())
		latency, chainID, pingErr := client.Ping(cmd.Context())

		pairs := [][2]string{
			{"Network", p.DisplayName},
			{"Chain ID", fmt.Sprintf("%d", p.ChainID)},
			{"RPC", p.RPCUrl},
			{"Explorer", p.ExplorerUrl},
			{"Factory", p.ContractAddress},
		}
		if pingErr != nil {
			pairs = append(pairs, [2]string{"RPC health", "unreachable: " + pingErr.Error()})
		} else if chainID != p.ChainID {
			pairs = append(pairs, [2]string{"RPC health", fmt.Sprintf("WRONG CHAIN: node reports %d", chainID)})
		} else {
			pairs = append(pairs, [2]string{"RPC health", fmt.Sprintf("ok (%s)", latency.Round(1e6))})
		}
		if !p.Ready() {
			pairs = append(pairs, [2]string{"Note", "token factory not deployed; deploys disabled"})
		}

		fmt.Println(ui.KeyValueBlock("Network Status", pairs))
		return nil
	},
}

var networkSwitchCmd = &cobra.Command{
	Use:   "switch <testnet|mainnet>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := network.NewRegistry(cfg)
		name := network.Type(args[0])

		p, err := reg.ByName(name)
		if err != nil {
			return fmt.Errorf("unknown network %q — run `dxbforge network list`", args[0])
		}

		// Probe the target before persisting so a bad switch is recoverable.
		client := chain.NewEVMClient(p.RPCUrl, retryFromConfig())
		_, chainID, pingErr := client.Ping(context.Background())
		if pingErr != nil {
			return fmt.Errorf("cannot reach %s (%s): %w — network unchanged", p.DisplayName, p.RPCUrl, pingErr)
		}
		if chainID != p.ChainID {
			return fmt.Errorf("%s reports chain %d, expected %d — network unchanged", p.RPCUrl, chainID, p.ChainID)
		}

		cfg.DefaultNetwork = string(name)
		if err := cfg.Save(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(p.DisplayName))))
		if !p.Ready() {
			fmt.Println(ui.Warn("The token factory is not deployed on this network yet; deploys are disabled."))
		}
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkStatusCmd, networkSwitchCmd)
}
