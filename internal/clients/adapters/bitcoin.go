package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bridge-syncer/internal/models"
)

// BitcoinCustomAdapter covers the asset-locking Bitcoin custom. It is
// both a finalization source (release-token status for redeem tickets)
// and a ticket source: deposits appear in the custom's pending queue
// before the hub has ingested them, and may be removed from that queue
// at any time. Removed-but-unsynced entries are what the tombstone
// table exists for.
type BitcoinCustomAdapter struct {
	chainID   string
	customURL string
	http      *http.Client
}

// NewBitcoinCustomAdapter creates an adapter for the Bitcoin custom
func NewBitcoinCustomAdapter(chainID, customURL string, timeout time.Duration) *BitcoinCustomAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BitcoinCustomAdapter{
		chainID:   chainID,
		customURL: customURL,
		http:      &http.Client{Timeout: timeout},
	}
}

func (a *BitcoinCustomAdapter) ChainID() string {
	return a.chainID
}

// btcReleaseStatus is the custom's release-token status response. The
// state string walks Signing -> Sending -> Submitted -> Confirmed.
type btcReleaseStatus struct {
	State string  `json:"state"`
	TxID  *string `json:"txid,omitempty"`
}

// FinalizationStatus projects the custom's release state machine onto
// the shared outcome type. Only Confirmed counts as finalized; a
// Submitted release can still be reorganized out.
func (a *BitcoinCustomAdapter) FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error) {
	var status btcReleaseStatus
	url := fmt.Sprintf("%s/release_token_status/%s", a.customURL, ticketID)
	if err := getJSON(ctx, a.http, "btc_release_token_status", url, &status); err != nil {
		if err == errNotTracked {
			return FinalizationOutcome{Kind: OutcomeUnknown}, nil
		}
		return FinalizationOutcome{}, err
	}

	switch status.State {
	case "Confirmed":
		if status.TxID == nil {
			return FinalizationOutcome{}, fmt.Errorf("custom %s reported Confirmed without txid for %s", a.chainID, ticketID)
		}
		return Finalized(*status.TxID), nil
	case "Signing", "Sending", "Submitted":
		return FinalizationOutcome{Kind: OutcomePending}, nil
	default:
		return FinalizationOutcome{Kind: OutcomeUnknown}, nil
	}
}

// btcPendingTicket is one entry of the custom's pending deposit queue.
type btcPendingTicket struct {
	TicketID   string  `json:"ticket_id"`
	TicketTime int64   `json:"ticket_time"` // unix milliseconds
	DstChain   string  `json:"target_chain_id"`
	Token      string  `json:"token"`
	Amount     string  `json:"amount"`
	Sender     *string `json:"sender,omitempty"`
	Receiver   string  `json:"receiver"`
}

func (t btcPendingTicket) toModel(srcChain string) *models.Ticket {
	return &models.Ticket{
		TicketID:   t.TicketID,
		TicketType: models.TicketTypeNormal,
		TicketTime: time.UnixMilli(t.TicketTime).UTC(),
		SrcChain:   srcChain,
		DstChain:   t.DstChain,
		Action:     models.ActionTransfer,
		Token:      t.Token,
		Amount:     t.Amount,
		Sender:     t.Sender,
		Receiver:   t.Receiver,
		Status:     models.TicketStatusWaitingForConfirmByDest,
	}
}

// PendingTickets returns queue entries starting at offset, converted
// to tickets with no hub sequence yet.
func (a *BitcoinCustomAdapter) PendingTickets(ctx context.Context, offset, limit uint64) ([]*models.Ticket, error) {
	var entries []btcPendingTicket
	url := fmt.Sprintf("%s/pending_tickets?offset=%d&limit=%d", a.customURL, offset, limit)
	if err := getJSON(ctx, a.http, "btc_pending_tickets", url, &entries); err != nil {
		if err == errNotTracked {
			return nil, nil
		}
		return nil, err
	}

	tickets := make([]*models.Ticket, 0, len(entries))
	for _, entry := range entries {
		tickets = append(tickets, entry.toModel(a.chainID))
	}
	return tickets, nil
}

// PendingTicketIDs lists the ids currently in the live queue.
func (a *BitcoinCustomAdapter) PendingTicketIDs(ctx context.Context) ([]string, error) {
	var ids []string
	url := fmt.Sprintf("%s/pending_ticket_ids", a.customURL)
	if err := getJSON(ctx, a.http, "btc_pending_ticket_ids", url, &ids); err != nil {
		if err == errNotTracked {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}
