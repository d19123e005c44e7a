package contract

import (
	"fmt"
	"math/big"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/config"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Sender sends write transactions to contracts.
type Sender struct {
	client  *chain.EVMClient
	abi     []ABIEntry
	signer  *wallet.Signer
	chainID *big.Int
}

// NewSender creates a Sender over an existing client.
func NewSender(client *chain.EVMClient, abi []ABIEntry, signer *wallet.Signer, chainID *big.Int) *Sender {
	return &Sender{
		client:  client,
		abi:     abi,
		signer:  signer,
		chainID: chainID,
	}
}

// Send calls a write function with the given attached value and broadcasts
// the transaction. Returns the transaction hash.
func (s *Sender) Send(contractAddr, funcName string, value *big.Int, args ...string) (string, error) {
	fn := findFunction(s.abi, funcName)
	if fn == nil {
		return "", fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !fn.IsWriteFunction() {
		return "", fmt.Errorf("function %q is not a write function", funcName)
	}
	if value != nil && value.Sign() > 0 && !fn.IsPayable() {
		return "", fmt.Errorf("function %q is not payable", funcName)
	}
	if value == nil {
		value = big.NewInt(0)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return "", fmt.Errorf("encoding call: %w", err)
	}

	from := s.signer.Address()

	// createToken deploys a token contract internally, so the fallback
	// bound is generous.
	gas, err := s.client.EstimateGas(from, contractAddr, calldata, value)
	if err != nil {
		gas = config.GasLimitTokenCreate
	}

	gasPrice, err := s.client.GasPrice()
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.client.GetNonce(from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := common.HexToAddress(contractAddr)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     value,
		Data:      hexToBytes(calldata),
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.client.SendRawTransaction(fmt.Sprintf("0x%x", raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	return hash, nil
}
