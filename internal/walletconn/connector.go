// Package walletconn models the wallet connection: which connector is in use,
// which account and chain it is on, and a change feed for both. It knows
// nothing about the network registry; RPC endpoints are resolved through an
// injected lookup.
package walletconn

// ConnectorKind identifies a wallet connector. The set is closed; unknown
// inputs parse to KindInjected.
type ConnectorKind int

const (
	// KindInjected is a generic injected or local key connector.
	KindInjected ConnectorKind = iota
	// KindMetaMask is the MetaMask browser extension.
	KindMetaMask
	// KindCoinbase is the Coinbase Wallet extension.
	KindCoinbase
	// KindLedger is a Ledger hardware wallet.
	KindLedger
)

// String returns the stable identifier for the connector kind.
func (k ConnectorKind) String() string {
	switch k {
	case KindMetaMask:
		return "metamask"
	case KindCoinbase:
		return "coinbase"
	case KindLedger:
		return "ledger"
	default:
		return "injected"
	}
}

// DisplayName returns the human-readable connector name.
func (k ConnectorKind) DisplayName() string {
	switch k {
	case KindMetaMask:
		return "MetaMask"
	case KindCoinbase:
		return "Coinbase Wallet"
	case KindLedger:
		return "Ledger"
	default:
		return "Injected"
	}
}

// ParseConnectorKind maps a stored identifier back to its kind. Unrecognized
// values fall back to KindInjected rather than erroring.
func ParseConnectorKind(s string) ConnectorKind {
	switch s {
	case "metamask":
		return KindMetaMask
	case "coinbase":
		return KindCoinbase
	case "ledger":
		return KindLedger
	default:
		return KindInjected
	}
}

// AvailableConnectors lists every supported connector kind.
func AvailableConnectors() []ConnectorKind {
	return []ConnectorKind{KindInjected, KindMetaMask, KindCoinbase, KindLedger}
}
