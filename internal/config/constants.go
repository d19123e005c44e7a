package config

import "time"

// Gas limit used as the EstimateGas fallback when the node cannot simulate
// the transaction. Conservative upper bound; actual gas used will be lower.
const GasLimitTokenCreate = uint64(2_000_000) // factory createToken (deploys a token contract)

// Timeout constants used across cmd and the deploy orchestrator.
const (
	TxConfirmTimeout = 5 * time.Minute  // token creation confirmation wait
	ConnectTimeout   = 15 * time.Second // RPC probe during connect / chain switch
)
