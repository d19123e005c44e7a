package cmd

import (
	"fmt"
	"os"

	"github.com/dxbchain/dxbforge/internal/config"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/dxbchain/dxbforge/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "dxbforge",
	Short: "Deploy ERC-20 tokens on DXB Chain",
	Long: `dxbforge — deploy and track fungible tokens through the DXB token factory.

  Create tokens with a name, symbol, and supply, pay the factory's
  creation fee, and browse every token your wallet has deployed —
  on DXB Chain Testnet and VRCN Chain.

The --network flag overrides the configured default network for a single
invocation. Persist it with: dxbforge network switch <name>`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			if networkFlag != "testnet" && networkFlag != "mainnet" {
				return fmt.Errorf("unknown network %q (want testnet or mainnet)", networkFlag)
			}
			cfg.DefaultNetwork = networkFlag
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// DXBFORGE_CONFIG_DIR env var seeds the --config flag default.
	if envDir := os.Getenv("DXBFORGE_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.dxbforge)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network for this invocation (testnet|mainnet)")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet name (default: configured default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		networkCmd,
		walletCmd,
		deployCmd,
		historyCmd,
		feeCmd,
		configCmd,
	)
}
