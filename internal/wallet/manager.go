package wallet

import (
	"fmt"
	"time"

	"github.com/dxbchain/dxbforge/internal/config"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is an alias for the stored wallet entry shape.
type Wallet = config.Wallet

// Manager handles wallet CRUD against wallets.json and the keystore.
type Manager struct {
	cfg *config.Config
	ks  *Keystore
}

// NewManager creates a wallet manager.
func NewManager(cfg *config.Config, ks *Keystore) *Manager {
	return &Manager{cfg: cfg, ks: ks}
}

// Add imports a private key as a named signing wallet. The first wallet added
// becomes the default.
func (m *Manager) Add(name, hexKey string) (*Wallet, error) {
	if name == "" {
		return nil, fmt.Errorf("wallet name is required")
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	address := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	wf, err := m.cfg.LoadWallets()
	if err != nil {
		return nil, fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wf.Wallets {
		if w.Name == name {
			return nil, fmt.Errorf("wallet %q already exists", name)
		}
	}

	ref, err := m.ks.Store(name, hexKey)
	if err != nil {
		return nil, err
	}

	w := Wallet{
		Name:      name,
		Address:   address,
		KeyRef:    ref,
		IsDefault: len(wf.Wallets) == 0,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	wf.Wallets = append(wf.Wallets, w)

	if err := m.cfg.SaveWallets(wf); err != nil {
		return nil, fmt.Errorf("saving wallets: %w", err)
	}
	return &w, nil
}

// List returns all stored wallets.
func (m *Manager) List() ([]Wallet, error) {
	wf, err := m.cfg.LoadWallets()
	if err != nil {
		return nil, err
	}
	return wf.Wallets, nil
}

// Get finds a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	wf, err := m.cfg.LoadWallets()
	if err != nil {
		return nil, err
	}
	for i := range wf.Wallets {
		if wf.Wallets[i].Name == name {
			return &wf.Wallets[i], nil
		}
	}
	return nil, fmt.Errorf("wallet %q not found", name)
}

// Default returns the configured default wallet: the one named in config, or
// the one flagged IsDefault, or an error when no wallets exist.
func (m *Manager) Default() (*Wallet, error) {
	wf, err := m.cfg.LoadWallets()
	if err != nil {
		return nil, err
	}
	if len(wf.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets configured; run: dxbforge wallet add")
	}
	if m.cfg.DefaultWallet != "" {
		for i := range wf.Wallets {
			if wf.Wallets[i].Name == m.cfg.DefaultWallet {
				return &wf.Wallets[i], nil
			}
		}
	}
	for i := range wf.Wallets {
		if wf.Wallets[i].IsDefault {
			return &wf.Wallets[i], nil
		}
	}
	return &wf.Wallets[0], nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	wf, err := m.cfg.LoadWallets()
	if err != nil {
		return err
	}
	idx := -1
	for i := range wf.Wallets {
		if wf.Wallets[i].Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("wallet %q not found", name)
	}

	if ref := wf.Wallets[idx].KeyRef; ref != "" {
		_ = m.ks.Delete(ref) // best-effort; the entry is removed regardless
	}
	wf.Wallets = append(wf.Wallets[:idx], wf.Wallets[idx+1:]...)
	return m.cfg.SaveWallets(wf)
}
