package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dxbchain/dxbforge/internal/config"
)

// ErrUnsupportedChain is returned when a chain ID has no network profile.
var ErrUnsupportedChain = errors.New("unsupported chain")

// ZeroAddress is the all-zero address sentinel meaning "not deployed yet".
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Type names one of the deployable networks.
type Type string

const (
	Testnet Type = "testnet"
	Mainnet Type = "mainnet"
)

// Currency describes a network's native currency.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Profile holds all metadata for a single deployable network. Profiles are
// immutable after registry construction.
type Profile struct {
	Name            Type     `json:"name"`
	DisplayName     string   `json:"display_name"`
	ChainID         int64    `json:"chain_id"`
	RPCUrl          string   `json:"rpc_url"`
	ExplorerUrl     string   `json:"explorer_url"`
	ContractAddress string   `json:"contract_address"` // token factory; ZeroAddress = not deployed
	Currency        Currency `json:"currency"`
}

// Ready reports whether the factory contract is deployed on this network.
func (p *Profile) Ready() bool {
	return p.ContractAddress != "" && !strings.EqualFold(p.ContractAddress, ZeroAddress)
}

// ExplorerTxURL returns the explorer page for a transaction hash.
func (p *Profile) ExplorerTxURL(hash string) string {
	return fmt.Sprintf("%s/tx/%s", p.ExplorerUrl, hash)
}

// ExplorerAddressURL returns the explorer page for an address.
func (p *Profile) ExplorerAddressURL(addr string) string {
	return fmt.Sprintf("%s/address/%s", p.ExplorerUrl, addr)
}

// Registry is the static chain-ID -> profile mapping. Pure lookup, no state.
type Registry struct {
	profiles []Profile
	byID     map[int64]*Profile
	byName   map[Type]*Profile
	def      Type
}

// NewRegistry builds the registry from the built-in profiles, applying the
// per-network RPC overrides and default network from cfg. Configuration is
// injected here once at startup; nothing else in the package is mutable.
func NewRegistry(cfg *config.Config) *Registry {
	profiles := allProfiles()
	r := &Registry{
		profiles: profiles,
		byID:     make(map[int64]*Profile, len(profiles)),
		byName:   make(map[Type]*Profile, len(profiles)),
		def:      Testnet,
	}
	for i := range r.profiles {
		p := &r.profiles[i]
		if cfg != nil {
			if url, ok := cfg.RPCOverrides[string(p.Name)]; ok && url != "" {
				p.RPCUrl = url
			}
		}
		r.byID[p.ChainID] = p
		r.byName[p.Name] = p
	}
	if cfg != nil && cfg.DefaultNetwork == string(Mainnet) {
		r.def = Mainnet
	}
	return r
}

// All returns every profile in stable declaration order.
func (r *Registry) All() []Profile {
	return r.profiles
}

// ByChainID finds a profile by numeric chain ID. Exact lookup, no fuzzy
// matching.
func (r *Registry) ByChainID(id int64) (*Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain ID %d", ErrUnsupportedChain, id)
	}
	return p, nil
}

// ByName finds a profile by network name.
func (r *Registry) ByName(t Type) (*Profile, error) {
	p, ok := r.byName[t]
	if !ok {
		return nil, fmt.Errorf("%w: network %q", ErrUnsupportedChain, t)
	}
	return p, nil
}

// IsSupported reports whether a chain ID has a matching profile.
func (r *Registry) IsSupported(id int64) bool {
	_, ok := r.byID[id]
	return ok
}

// IsReady reports whether a chain is supported AND its factory contract is
// deployed (contract address is not the zero sentinel).
func (r *Registry) IsReady(id int64) bool {
	p, ok := r.byID[id]
	return ok && p.Ready()
}

// Default returns the profile used for display defaults (for example, showing
// the creation fee) when no wallet is connected.
func (r *Registry) Default() *Profile {
	return r.byName[r.def]
}

// RPCLookup returns the RPC URL for a supported chain ID. Used to hand the
// wallet connection a resolver without coupling it to the registry type.
func (r *Registry) RPCLookup(id int64) (string, error) {
	p, err := r.ByChainID(id)
	if err != nil {
		return "", err
	}
	return p.RPCUrl, nil
}

// Validate reports configuration problems, one error per affected network.
// A network whose factory address is unset is only a problem for that
// network's readiness; the rest of the registry stays usable.
func (r *Registry) Validate() []error {
	var errs []error
	for i := range r.profiles {
		p := &r.profiles[i]
		if p.RPCUrl == "" {
			errs = append(errs, fmt.Errorf("network %s: missing RPC URL", p.Name))
		}
		if p.ContractAddress == "" {
			errs = append(errs, fmt.Errorf("network %s: missing factory contract address (use %q for not-yet-deployed)", p.Name, ZeroAddress))
		}
	}
	return errs
}

// --- network data ---

func allProfiles() []Profile {
	return []Profile{
		{
			Name: Testnet, DisplayName: "DXB Chain Testnet", ChainID: 1999,
			RPCUrl:          "https://rpc-testnet-1.vrcchain.com",
			ExplorerUrl:     "https://dxb.vrcchain.com",
			ContractAddress: "0x06200EcfC49FEf79d844Eb66596fD10094dE8860",
			Currency:        Currency{Name: "VRCN", Symbol: "VRCN", Decimals: 18},
		},
		{
			Name: Mainnet, DisplayName: "VRCN Chain", ChainID: 7131,
			RPCUrl:      "https://rpc-mainnet-4.vrcchain.com",
			ExplorerUrl: "https://vrcchain.com",
			// Factory not deployed on mainnet yet; flip this single line when it is.
			ContractAddress: ZeroAddress,
			Currency:        Currency{Name: "VRCN", Symbol: "VRCN", Decimals: 18},
		},
	}
}
