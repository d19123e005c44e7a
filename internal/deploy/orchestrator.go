// Package deploy runs the token creation flow: validate, pay the factory fee,
// submit createToken, wait for the receipt, and extract the new token address
// from the factory's TokenCreated log.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/config"
	"github.com/dxbchain/dxbforge/internal/contract"
	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/walletconn"
)

var (
	// ErrNotConnected means no wallet session exists.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrUnsupportedNetwork means the wallet sits on a chain with no profile.
	ErrUnsupportedNetwork = errors.New("unsupported network")
	// ErrNetworkNotReady means the chain is known but the factory is not
	// deployed there.
	ErrNetworkNotReady = errors.New("token factory not deployed on this network")
	// ErrDeployInProgress rejects a second deployment while one is running.
	// Exactly one transaction is submitted per accepted request.
	ErrDeployInProgress = errors.New("a deployment is already in progress")
)

// maxTotalSupply is the largest accepted supply in whole tokens (one trillion).
var maxTotalSupply = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// Status tracks a deployment transaction through its lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Request holds the user's token parameters, as entered.
type Request struct {
	Name          string
	Symbol        string
	TotalSupply   string // whole tokens, decimal
	Description   string // kept off-chain; not part of the contract call
	PaymentAmount string // native currency, decimal
}

// Transaction is the record of one deployment attempt.
type Transaction struct {
	Hash                 string
	Status               Status
	DeployedTokenAddress string // empty until the TokenCreated log is found
	Err                  error
}

// Orchestrator drives deployments over the active wallet connection.
type Orchestrator struct {
	reg  *network.Registry
	conn *walletconn.Connection
	bus  *event.Bus

	mu       sync.Mutex
	inFlight bool

	feeMu   sync.Mutex
	feeFor  int64 // chain ID the cached fee belongs to
	fee     *big.Int
	feeUnsb func()

	confirmTimeout time.Duration
}

// NewOrchestrator wires an orchestrator to the connection and bus. The cached
// creation fee is dropped whenever the network changes.
func NewOrchestrator(reg *network.Registry, conn *walletconn.Connection, bus *event.Bus) *Orchestrator {
	o := &Orchestrator{
		reg:            reg,
		conn:           conn,
		bus:            bus,
		confirmTimeout: config.TxConfirmTimeout,
	}
	o.feeUnsb = bus.Subscribe(event.NetworkChanged, func(any) {
		o.feeMu.Lock()
		o.fee = nil
		o.feeFor = 0
		o.feeMu.Unlock()
	})
	return o
}

// CreationFee returns the factory's creation fee in wei for the connected
// network, reading it lazily and caching it until the network changes.
func (o *Orchestrator) CreationFee() (*big.Int, error) {
	st := o.conn.State()
	if !st.IsConnected {
		return nil, ErrNotConnected
	}

	o.feeMu.Lock()
	if o.fee != nil && o.feeFor == st.ChainID {
		fee := new(big.Int).Set(o.fee)
		o.feeMu.Unlock()
		return fee, nil
	}
	o.feeMu.Unlock()

	p, err := o.reg.ByChainID(st.ChainID)
	if err != nil {
		return nil, ErrUnsupportedNetwork
	}
	if !p.Ready() {
		return nil, ErrNetworkNotReady
	}

	caller := contract.NewCaller(o.conn.Client(), contract.FactoryABI)
	vals, err := caller.Call(p.ContractAddress, "creationFee")
	if err != nil {
		return nil, fmt.Errorf("reading creation fee: %w", err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("creation fee: empty result")
	}
	fee, ok := new(big.Int).SetString(vals[0], 10)
	if !ok {
		return nil, fmt.Errorf("creation fee: bad value %q", vals[0])
	}

	o.feeMu.Lock()
	o.fee = new(big.Int).Set(fee)
	o.feeFor = st.ChainID
	o.feeMu.Unlock()

	return fee, nil
}

// Validate checks a request field by field and returns one message per bad
// field. An empty map means the request is acceptable. The fee comparison is
// skipped when the fee cannot be read; Deploy re-checks it against the live
// value before submitting.
func (o *Orchestrator) Validate(req Request) map[string]string {
	problems := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		problems["name"] = "token name must be at least 3 characters"
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if len(symbol) < 2 || len(symbol) > 10 {
		problems["symbol"] = "symbol must be 2 to 10 characters"
	}

	supply, ok := new(big.Int).SetString(strings.TrimSpace(req.TotalSupply), 10)
	switch {
	case !ok:
		problems["totalSupply"] = "total supply must be a whole decimal number"
	case supply.Sign() <= 0:
		problems["totalSupply"] = "total supply must be greater than zero"
	case supply.Cmp(maxTotalSupply) > 0:
		problems["totalSupply"] = "total supply must not exceed 1,000,000,000,000"
	}

	pay, err := chain.ParseUnits(req.PaymentAmount, 18)
	if err != nil {
		problems["paymentAmount"] = "payment must be a decimal amount"
	} else if fee, feeErr := o.CreationFee(); feeErr == nil && pay.Cmp(fee) < 0 {
		problems["paymentAmount"] = fmt.Sprintf(
			"payment does not cover the creation fee of %s VRCN", chain.FormatUnits(fee, 18))
	}

	return problems
}

// Deploy validates and submits a createToken transaction, then blocks until
// the receipt arrives or ctx/timeout fires. Only one deployment may run at a
// time; concurrent calls get ErrDeployInProgress without touching the chain.
func (o *Orchestrator) Deploy(ctx context.Context, req Request) (*Transaction, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrDeployInProgress
	}
	o.inFlight = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	st := o.conn.State()
	if !st.IsConnected {
		return nil, ErrNotConnected
	}
	p, err := o.reg.ByChainID(st.ChainID)
	if err != nil {
		return nil, ErrUnsupportedNetwork
	}
	if !p.Ready() {
		return nil, ErrNetworkNotReady
	}

	if problems := o.Validate(req); len(problems) > 0 {
		return nil, validationError(problems)
	}

	supplyWei, err := chain.ParseUnits(strings.TrimSpace(req.TotalSupply), p.Currency.Decimals)
	if err != nil {
		return nil, fmt.Errorf("total supply: %w", err)
	}
	payWei, err := chain.ParseUnits(req.PaymentAmount, p.Currency.Decimals)
	if err != nil {
		return nil, fmt.Errorf("payment amount: %w", err)
	}

	fee, err := o.CreationFee()
	if err != nil {
		return nil, err
	}
	if payWei.Cmp(fee) < 0 {
		return nil, fmt.Errorf("payment %s does not cover the creation fee %s %s",
			req.PaymentAmount, chain.FormatUnits(fee, 18), p.Currency.Symbol)
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	sender := contract.NewSender(o.conn.Client(), contract.FactoryABI, o.conn.Signer(), big.NewInt(st.ChainID))

	hash, err := sender.Send(p.ContractAddress, "createToken", payWei,
		strings.TrimSpace(req.Name), symbol, supplyWei.String())
	if err != nil {
		return nil, fmt.Errorf("submitting deployment: %w", err)
	}

	tx := &Transaction{Hash: hash, Status: StatusPending}

	receipt, err := o.conn.Client().WaitForReceipt(ctx, hash, o.confirmTimeout)
	if err != nil {
		tx.Status = StatusFailed
		tx.Err = err
		return tx, err
	}

	tx.Status = StatusConfirmed
	tx.DeployedTokenAddress = tokenAddressFromLogs(receipt.Logs, p.ContractAddress)

	o.bus.Publish(event.TokenDeployed, tx)
	return tx, nil
}

// Close detaches the orchestrator from the bus.
func (o *Orchestrator) Close() {
	if o.feeUnsb != nil {
		o.feeUnsb()
		o.feeUnsb = nil
	}
}

// tokenAddressFromLogs finds the factory's TokenCreated log in a receipt and
// extracts the token address from its first indexed topic. The address is the
// lower 20 bytes of the 32-byte topic word; it is never guessed from other
// receipt fields. Empty means the log was absent from the receipt.
func tokenAddressFromLogs(logs []chain.LogEntry, factoryAddr string) string {
	for _, log := range logs {
		if !strings.EqualFold(log.Address, factoryAddr) {
			continue
		}
		if len(log.Topics) < 3 {
			continue
		}
		topic := log.Topics[1]
		if len(topic) != 66 || !strings.HasPrefix(topic, "0x") {
			continue
		}
		return "0x" + topic[26:]
	}
	return ""
}

func validationError(problems map[string]string) error {
	msgs := make([]string, 0, len(problems))
	for field, msg := range problems {
		msgs = append(msgs, field+": "+msg)
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
