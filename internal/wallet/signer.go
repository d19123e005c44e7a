package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a wallet. The private key is fetched at
// signing time, never held on the struct.
type Signer struct {
	address  string
	retrieve func() (string, error)
}

// NewKeystoreSigner creates a signer that pulls its key from the OS keychain.
func NewKeystoreSigner(w *Wallet, ks *Keystore) *Signer {
	return &Signer{
		address:  w.Address,
		retrieve: func() (string, error) { return ks.Retrieve(w.KeyRef) },
	}
}

// NewHexSigner creates a signer directly from a hex private key. Used for
// tests and ephemeral keys; the derived address is computed from the key.
func NewHexSigner(hexKey string) (*Signer, error) {
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()
	return &Signer{
		address:  addr,
		retrieve: func() (string, error) { return hexKey, nil },
	}, nil
}

// SignTx signs an EVM transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	hexKey, err := s.retrieve()
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signer := types.NewLondonSigner(chainID)
	signed, err := types.SignTx(tx, signer, privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}

	return raw, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() string {
	return s.address
}

func stripHexPrefix(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "0x")
}
