package cmd

import (
	"fmt"

	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := [][2]string{
			{"Config dir", cfg.Dir()},
			{"Default network", cfg.DefaultNetwork},
			{"Default wallet", orDash(cfg.DefaultWallet)},
			{"Retry attempts", fmt.Sprintf("%d", cfg.Retry.MaxAttempts)},
			{"Retry delay", fmt.Sprintf("%d ms", cfg.Retry.RetryDelayMS)},
			{"Request timeout", fmt.Sprintf("%d ms", cfg.Retry.RequestTimeout)},
			{"Poll interval", fmt.Sprintf("%d ms", cfg.Retry.PollIntervalMS)},
		}
		for name, url := range cfg.RPCOverrides {
			if url != "" {
				pairs = append(pairs, [2]string{"RPC override (" + name + ")", url})
			}
		}
		fmt.Println(ui.KeyValueBlock("Configuration", pairs))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <testnet|mainnet> <url>",
	Short: "Override the RPC endpoint for a network",
	Long: `Persist a custom RPC endpoint for a network. Pass an empty string to
clear the override and return to the built-in endpoint.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if name != "testnet" && name != "mainnet" {
			return fmt.Errorf("unknown network %q (want testnet or mainnet)", name)
		}

		if url == "" {
			delete(cfg.RPCOverrides, name)
		} else {
			cfg.RPCOverrides[name] = url
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		reg := network.NewRegistry(cfg)
		p, err := reg.ByName(network.Type(name))
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC for %s is now %s", name, p.RPCUrl)))
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetRPCCmd)
}
