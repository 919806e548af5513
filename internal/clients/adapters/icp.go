package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ICPRouteAdapter reconciles tickets minted by an ICP route canister.
// The canister's query gateway reports mint status as a variant
// object: exactly one of the branch fields is present.
type ICPRouteAdapter struct {
	chainID    string
	gatewayURL string
	http       *http.Client
}

// NewICPRouteAdapter creates an adapter for an ICP execution chain
func NewICPRouteAdapter(chainID, gatewayURL string, timeout time.Duration) *ICPRouteAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ICPRouteAdapter{
		chainID:    chainID,
		gatewayURL: gatewayURL,
		http:       &http.Client{Timeout: timeout},
	}
}

func (a *ICPRouteAdapter) ChainID() string {
	return a.chainID
}

// icpMintStatus mirrors the canister's MintTokenStatus variant.
type icpMintStatus struct {
	Finalized *struct {
		BlockIndex uint64 `json:"block_index"`
		TxHash     string `json:"tx_hash"`
	} `json:"Finalized,omitempty"`
	Processing *struct{} `json:"Processing,omitempty"`
	Unknown    *struct{} `json:"Unknown,omitempty"`
}

// FinalizationStatus projects the canister variant onto the shared
// outcome type.
func (a *ICPRouteAdapter) FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error) {
	var status icpMintStatus
	url := fmt.Sprintf("%s/mint_token_status/%s", a.gatewayURL, ticketID)
	if err := getJSON(ctx, a.http, "icp_mint_token_status", url, &status); err != nil {
		if err == errNotTracked {
			return FinalizationOutcome{Kind: OutcomeUnknown}, nil
		}
		return FinalizationOutcome{}, err
	}

	switch {
	case status.Finalized != nil:
		ref := status.Finalized.TxHash
		if ref == "" {
			// ledger mints have no tx hash, only a block index
			ref = fmt.Sprintf("%d", status.Finalized.BlockIndex)
		}
		return Finalized(ref), nil
	case status.Processing != nil:
		return FinalizationOutcome{Kind: OutcomePending}, nil
	default:
		return FinalizationOutcome{Kind: OutcomeUnknown}, nil
	}
}
