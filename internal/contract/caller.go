package contract

import (
	"fmt"

	"github.com/dxbchain/dxbforge/internal/chain"
)

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	client *chain.EVMClient
	abi    []ABIEntry
}

// NewCaller creates a Caller over an existing client.
func NewCaller(client *chain.EVMClient, abi []ABIEntry) *Caller {
	return &Caller{client: client, abi: abi}
}

// Call calls a read function on a contract and returns decoded results as
// strings. A single address[] output decodes to one string per element.
func (c *Caller) Call(contractAddr, funcName string, args ...string) ([]string, error) {
	fn := findFunction(c.abi, funcName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !fn.IsReadFunction() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", funcName, fn.StateMutability)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := c.client.CallContract(contractAddr, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	decoded, err := decodeResult(fn, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}

	return decoded, nil
}

// BatchRequest is one read in a batched round trip.
type BatchRequest struct {
	Contract string
	Func     string
	Args     []string
}

// BatchCallResult holds the decoded values for one batched read, or the error
// that affected only that read.
type BatchCallResult struct {
	Values []string
	Err    error
}

// BatchCall performs all reads in a single batched round trip. Individual
// failures land in the matching result; they never abort the batch.
func (c *Caller) BatchCall(reqs []BatchRequest) ([]BatchCallResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	items := make([]chain.BatchItem, len(reqs))
	fns := make([]*ABIEntry, len(reqs))
	for i, req := range reqs {
		fn := findFunction(c.abi, req.Func)
		if fn == nil {
			return nil, fmt.Errorf("function %q not found in ABI", req.Func)
		}
		if !fn.IsReadFunction() {
			return nil, fmt.Errorf("function %q is not a read function", req.Func)
		}
		calldata, err := encodeCall(fn, req.Args)
		if err != nil {
			return nil, fmt.Errorf("encoding call %q: %w", req.Func, err)
		}
		items[i] = chain.BatchItem{To: req.Contract, Data: calldata}
		fns[i] = fn
	}

	raw, err := c.client.BatchCallContract(items)
	if err != nil {
		return nil, fmt.Errorf("batch call failed: %w", err)
	}

	results := make([]BatchCallResult, len(reqs))
	for i, r := range raw {
		if r.Err != nil {
			results[i] = BatchCallResult{Err: r.Err}
			continue
		}
		values, err := decodeResult(fns[i], r.Raw)
		if err != nil {
			results[i] = BatchCallResult{Err: fmt.Errorf("decoding result: %w", err)}
			continue
		}
		results[i] = BatchCallResult{Values: values}
	}
	return results, nil
}
