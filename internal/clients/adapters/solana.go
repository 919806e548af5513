package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SolanaRouteAdapter reconciles tickets minted by the Solana route
// program. The route service reports the mint signature together with
// its commitment level.
type SolanaRouteAdapter struct {
	chainID  string
	routeURL string
	http     *http.Client
}

// NewSolanaRouteAdapter creates an adapter for the Solana route
func NewSolanaRouteAdapter(chainID, routeURL string, timeout time.Duration) *SolanaRouteAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SolanaRouteAdapter{
		chainID:  chainID,
		routeURL: routeURL,
		http:     &http.Client{Timeout: timeout},
	}
}

func (a *SolanaRouteAdapter) ChainID() string {
	return a.chainID
}

// solanaSignatureStatus mirrors the route's signature status response.
type solanaSignatureStatus struct {
	Signature          string  `json:"signature"`
	ConfirmationStatus string  `json:"confirmationStatus"` // processed | confirmed | finalized
	Err                *string `json:"err,omitempty"`
}

// FinalizationStatus treats only the "finalized" commitment level as
// final; "processed" and "confirmed" signatures can still be dropped.
func (a *SolanaRouteAdapter) FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error) {
	var status solanaSignatureStatus
	url := fmt.Sprintf("%s/mint_signature/%s", a.routeURL, ticketID)
	if err := getJSON(ctx, a.http, "solana_mint_signature", url, &status); err != nil {
		if err == errNotTracked {
			return FinalizationOutcome{Kind: OutcomeUnknown}, nil
		}
		return FinalizationOutcome{}, err
	}

	if status.Err != nil {
		return FinalizationOutcome{Kind: OutcomeFailed, Reason: *status.Err}, nil
	}
	switch status.ConfirmationStatus {
	case "finalized":
		return Finalized(status.Signature), nil
	case "processed", "confirmed":
		return FinalizationOutcome{Kind: OutcomePending}, nil
	default:
		return FinalizationOutcome{Kind: OutcomeUnknown}, nil
	}
}
