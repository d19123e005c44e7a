package cmd

import (
	"context"
	"fmt"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/config"
	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/ui"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/dxbchain/dxbforge/internal/walletconn"
)

// session bundles everything a connected command needs.
type session struct {
	Registry *network.Registry
	Conn     *walletconn.Connection
	Bus      *event.Bus
	Resolver *network.Resolver
	Profile  *network.Profile
}

// retryFromConfig converts the stored millisecond tuning to durations.
func retryFromConfig() chain.RetryConfig {
	r := cfg.Retry
	return chain.RetryFromMillis(r.MaxAttempts, r.RetryDelayMS, r.RequestTimeout, r.PollIntervalMS)
}

// openSession loads the selected wallet, connects it to the configured
// network, and returns the wired components. The caller must Close the
// returned session.
func openSession(ctx context.Context) (*session, error) {
	reg := network.NewRegistry(cfg)

	// Profile misconfiguration only disables the affected network; warn and
	// keep going.
	for _, cfgErr := range reg.Validate() {
		fmt.Println(ui.Warn(cfgErr.Error()))
	}

	mgr := wallet.NewManager(cfg, wallet.DefaultKeystore())
	var w *wallet.Wallet
	var err error
	if walletFlag != "" {
		w, err = mgr.Get(walletFlag)
	} else {
		w, err = mgr.Default()
	}
	if err != nil {
		return nil, err
	}

	signer := wallet.NewKeystoreSigner(w, wallet.DefaultKeystore())

	p, err := reg.ByName(network.Type(cfg.DefaultNetwork))
	if err != nil {
		return nil, err
	}

	conn := walletconn.NewConnection(reg.RPCLookup, retryFromConfig())
	connectCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()
	if err := conn.Connect(connectCtx, walletconn.KindInjected, signer, p.ChainID); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", p.DisplayName, err)
	}

	bus := event.NewBus()
	res := network.NewResolver(reg, conn, bus)

	return &session{
		Registry: reg,
		Conn:     conn,
		Bus:      bus,
		Resolver: res,
		Profile:  p,
	}, nil
}

// Close tears the session down.
func (s *session) Close() {
	s.Resolver.Close()
	s.Conn.Close()
}
