package adapters

import (
	"fmt"

	"bridge-syncer/internal/config"
)

// Build constructs one adapter per configured binding. Custom-kind
// entries must resolve to an adapter that also implements
// CustomAdapter so the pending-queue poller can use it.
func Build(configs []config.AdapterConfig) ([]ChainAdapter, error) {
	built := make([]ChainAdapter, 0, len(configs))
	for _, cfg := range configs {
		adapter, err := buildOne(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Kind == config.AdapterKindCustom {
			if _, ok := adapter.(CustomAdapter); !ok {
				return nil, fmt.Errorf("adapter family %q cannot serve a custom chain (%s)", cfg.Family, cfg.ChainID)
			}
		}
		built = append(built, adapter)
	}
	return built, nil
}

func buildOne(cfg config.AdapterConfig) (ChainAdapter, error) {
	switch cfg.Family {
	case "evm":
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("adapter %s: evm family requires rpc_url", cfg.ChainID)
		}
		return NewEVMRouteAdapter(cfg.ChainID, cfg.Endpoint, cfg.RPCURL, cfg.Timeout())
	case "icp":
		return NewICPRouteAdapter(cfg.ChainID, cfg.Endpoint, cfg.Timeout()), nil
	case "bitcoin":
		return NewBitcoinCustomAdapter(cfg.ChainID, cfg.Endpoint, cfg.Timeout()), nil
	case "solana":
		return NewSolanaRouteAdapter(cfg.ChainID, cfg.Endpoint, cfg.Timeout()), nil
	case "ton":
		return NewTonRouteAdapter(cfg.ChainID, cfg.Endpoint, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unknown adapter family %q for chain %s", cfg.Family, cfg.ChainID)
	}
}
