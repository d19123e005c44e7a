package cmd

import (
	"fmt"

	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage signing wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a signing wallet",
	Long: `Import a private key as a named signing wallet. The key is stored in the
OS keychain; only the derived address lands in wallets.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		hexKey := walletKeyFlag
		if hexKey == "" {
			hexKey = ui.PromptInput("Private key (hex)")
		}
		if hexKey == "" {
			return fmt.Errorf("a private key is required\n  Usage: dxbforge wallet add <name> --key <private-key>")
		}

		mgr := wallet.NewManager(cfg, wallet.DefaultKeystore())
		w, err := mgr.Add(name, hexKey)
		if err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q added: %s", name, ui.Addr(w.Address))))
		if w.IsDefault {
			fmt.Println(ui.Hint("This is now your default wallet."))
		} else {
			fmt.Println(ui.Hint(fmt.Sprintf("Use it once with: dxbforge deploy --wallet %s", name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := wallet.NewManager(cfg, wallet.DefaultKeystore())
		wallets, err := mgr.List()
		if err != nil {
			return err
		}

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: dxbforge wallet add myWallet --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), def})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := wallet.NewManager(cfg, wallet.DefaultKeystore())
		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := wallet.NewManager(cfg, wallet.DefaultKeystore())
		if _, err := mgr.Get(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key (stored in OS keychain)")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
