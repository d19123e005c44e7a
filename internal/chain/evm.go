package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// RetryConfig is the explicit transport tuning record passed to every client.
// No retry count or delay lives anywhere else.
type RetryConfig struct {
	MaxAttempts    int           // HTTP attempts per request (transport errors only)
	RetryDelay     time.Duration // delay between attempts
	RequestTimeout time.Duration // per-request HTTP timeout
	PollInterval   time.Duration // receipt polling interval
}

// DefaultRetryConfig returns the stock tuning: 3 attempts, 1 s apart, 10 s
// per request, 2 s polling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		RetryDelay:     time.Second,
		RequestTimeout: 10 * time.Second,
		PollInterval:   2 * time.Second,
	}
}

// RetryFromMillis builds a RetryConfig from millisecond integers (the shape
// stored in config.json). Zero or negative fields fall back to the defaults.
func RetryFromMillis(attempts, delayMS, timeoutMS, pollMS int) RetryConfig {
	cfg := DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	if delayMS > 0 {
		cfg.RetryDelay = time.Duration(delayMS) * time.Millisecond
	}
	if timeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(timeoutMS) * time.Millisecond
	}
	if pollMS > 0 {
		cfg.PollInterval = time.Duration(pollMS) * time.Millisecond
	}
	return cfg
}

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
	retry  RetryConfig
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string, retry RetryConfig) *EVMClient {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &EVMClient{
		url:    url,
		client: &http.Client{Timeout: retry.RequestTimeout},
		retry:  retry,
	}
}

// URL returns the RPC endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// GetBalance returns the native balance in wei for an address.
func (c *EVMClient) GetBalance(address string) (*big.Int, error) {
	result, err := c.call("eth_getBalance", address, "latest")
	if err != nil {
		return nil, err
	}
	return resultToBig(result, "balance")
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID() (int64, error) {
	result, err := c.call("eth_chainId")
	if err != nil {
		return 0, err
	}
	id, err := resultToBig(result, "chain id")
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice() (*big.Int, error) {
	result, err := c.call("eth_gasPrice")
	if err != nil {
		return nil, err
	}
	return resultToBig(result, "gas price")
}

// GetNonce returns the transaction count (nonce) for an address.
func (c *EVMClient) GetNonce(address string) (uint64, error) {
	result, err := c.call("eth_getTransactionCount", address, "latest")
	if err != nil {
		return 0, err
	}
	n, err := resultToBig(result, "nonce")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(from, to, data string, value *big.Int) (uint64, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}

	result, err := c.call("eth_estimateGas", params, "latest")
	if err != nil {
		return 0, err
	}
	n, err := resultToBig(result, "gas estimate")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(rawTx string) (string, error) {
	result, err := c.call("eth_sendRawTransaction", rawTx)
	if err != nil {
		return "", err
	}
	hash, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return hash, nil
}

// CallContract calls a smart contract read function with the given calldata
// and an optional value, returning the raw hex result.
func (c *EVMClient) CallContract(toAddr, calldata string) (string, error) {
	result, err := c.call("eth_call", map[string]string{
		"to":   toAddr,
		"data": calldata,
	}, "latest")
	if err != nil {
		return "", err
	}
	s, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return s, nil
}

// BatchItem is one eth_call in a batched round trip.
type BatchItem struct {
	To   string
	Data string
}

// BatchResult is one result of a batched eth_call. Err is set when that
// individual call failed; other items in the batch are unaffected.
type BatchResult struct {
	Raw string
	Err error
}

// BatchCallContract performs all eth_call items in a single JSON-RPC batch
// request. Per-item failures are reported in the matching BatchResult, never
// as a batch-wide error.
func (c *EVMClient) BatchCallContract(items []BatchItem) ([]BatchResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	reqs := make([]rpcRequest, len(items))
	for i, item := range items {
		reqs[i] = rpcRequest{
			JSONRPC: "2.0",
			Method:  "eth_call",
			Params:  []interface{}{map[string]string{"to": item.To, "data": item.Data}, "latest"},
			ID:      i + 1,
		}
	}
	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, err
	}

	raw, err := c.post(body)
	if err != nil {
		return nil, err
	}

	var resps []rpcResponse
	if err := json.Unmarshal(raw, &resps); err != nil {
		return nil, fmt.Errorf("parsing batch response: %w", err)
	}

	// Responses may arrive out of order; match by ID.
	results := make([]BatchResult, len(items))
	for i := range results {
		results[i].Err = fmt.Errorf("no response for batch item %d", i)
	}
	for _, resp := range resps {
		idx := resp.ID - 1
		if idx < 0 || idx >= len(results) {
			continue
		}
		if resp.Error != nil {
			results[idx] = BatchResult{Err: fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)}
			continue
		}
		var s string
		if err := json.Unmarshal(resp.Result, &s); err != nil {
			results[idx] = BatchResult{Err: fmt.Errorf("parsing result: %w", err)}
			continue
		}
		results[idx] = BatchResult{Raw: s}
	}
	return results, nil
}

// LogEntry holds one event log emitted by a mined transaction.
type LogEntry struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// TxReceipt holds the on-chain receipt of a mined transaction, including its
// emitted logs.
type TxReceipt struct {
	Hash        string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
	Logs        []LogEntry
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(hash string) (*TxReceipt, error) {
	result, err := c.call("eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil // still pending
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	var r struct {
		Status      string     `json:"status"`
		BlockNumber string     `json:"blockNumber"`
		GasUsed     string     `json:"gasUsed"`
		Logs        []LogEntry `json:"logs"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	receipt := &TxReceipt{Hash: hash, Logs: r.Logs}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// WaitForReceipt polls at the configured interval until the transaction is
// mined, the timeout expires, or ctx is canceled. Returns the receipt plus an
// error if the transaction reverted (Status == 0).
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*TxReceipt, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		receipt, err := c.GetTransactionReceipt(hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("transaction reverted (hash: %s)", hash)
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retry.PollInterval):
		}
	}
	return nil, fmt.Errorf("transaction %s not mined within %s", hash, timeout)
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *EVMClient) call(method string, params ...interface{}) (interface{}, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	body, err := c.post(reqBody)
	if err != nil {
		return nil, err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var result interface{}
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}

	return result, nil
}

// post sends the request body, retrying transport failures per the retry
// config. RPC-level errors (the node answered) are never retried here.
func (c *EVMClient) post(reqBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retry.RetryDelay)
		}
		resp, err := c.client.Post(c.url, "application/json", strings.NewReader(string(reqBody)))
		if err != nil {
			lastErr = fmt.Errorf("RPC request failed: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

// --- math helpers ---

func parseBigHex(s string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	return n, ok
}

func resultToBig(result interface{}, what string) (*big.Int, error) {
	hexStr, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", result)
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse %s hex: %s", what, hexStr)
	}
	return n, nil
}

// ParseUnits converts a decimal string (e.g. "1000000" or "0.01") to its
// fixed-point integer representation with the given number of decimals.
// The conversion is exact: no floats, and more fractional digits than
// decimals is an error rather than a silent rounding.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return nil, fmt.Errorf("invalid amount: %q", s)
		}
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	return n, nil
}

// FormatUnits converts a fixed-point integer to a decimal string, trimming
// trailing fractional zeros ("10000000000000000" @ 18 -> "0.01").
func FormatUnits(n *big.Int, decimals int) string {
	if n == nil {
		return "0"
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(n, div, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	remStr := rem.String()
	frac := strings.TrimRight(strings.Repeat("0", decimals-len(remStr))+remStr, "0")
	return quo.String() + "." + frac
}

// TruncateUnits converts a fixed-point integer to its whole-unit display
// value, discarding any fractional remainder ("1500000000000000000" @ 18 -> "1").
func TruncateUnits(n *big.Int, decimals int) string {
	if n == nil {
		return "0"
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Quo(n, div).String()
}

// Ping tests the RPC endpoint and returns latency + chain ID.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, chainID int64, err error) {
	start := time.Now()
	result, err := c.callCtx(ctx, "eth_chainId")
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	id, err := resultToBig(result, "chain id")
	if err != nil {
		return latency, 0, err
	}
	return latency, id.Int64(), nil
}

func (c *EVMClient) callCtx(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	reqBody, _ := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error: %s", rpcResp.Error.Message)
	}

	var result interface{}
	json.Unmarshal(rpcResp.Result, &result)
	return result, nil
}
