package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TonRouteAdapter reconciles tickets minted by the TON route. The
// route reports numeric status codes rather than named states.
type TonRouteAdapter struct {
	chainID  string
	routeURL string
	http     *http.Client
}

// TON route status codes.
const (
	tonStatusUnknown   = 0
	tonStatusQueued    = 1
	tonStatusSubmitted = 2
	tonStatusFinalized = 3
	tonStatusFailed    = 4
)

// NewTonRouteAdapter creates an adapter for the TON route
func NewTonRouteAdapter(chainID, routeURL string, timeout time.Duration) *TonRouteAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TonRouteAdapter{
		chainID:  chainID,
		routeURL: routeURL,
		http:     &http.Client{Timeout: timeout},
	}
}

func (a *TonRouteAdapter) ChainID() string {
	return a.chainID
}

// tonMintStatus mirrors the route's numeric status response.
type tonMintStatus struct {
	Code   int    `json:"code"`
	TxHash string `json:"tx_hash,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// FinalizationStatus projects the numeric code onto the shared
// outcome type.
func (a *TonRouteAdapter) FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error) {
	var status tonMintStatus
	url := fmt.Sprintf("%s/tickets/%s/status", a.routeURL, ticketID)
	if err := getJSON(ctx, a.http, "ton_ticket_status", url, &status); err != nil {
		if err == errNotTracked {
			return FinalizationOutcome{Kind: OutcomeUnknown}, nil
		}
		return FinalizationOutcome{}, err
	}

	switch status.Code {
	case tonStatusFinalized:
		if status.TxHash == "" {
			return FinalizationOutcome{}, fmt.Errorf("ton route reported finalized without tx hash for %s", ticketID)
		}
		return Finalized(status.TxHash), nil
	case tonStatusQueued, tonStatusSubmitted:
		return FinalizationOutcome{Kind: OutcomePending}, nil
	case tonStatusFailed:
		return FinalizationOutcome{Kind: OutcomeFailed, Reason: status.Detail}, nil
	default:
		return FinalizationOutcome{Kind: OutcomeUnknown}, nil
	}
}
