// Package adapters holds one ChainAdapter per supported chain family.
// Every adapter speaks its own wire shape to the remote route or
// custom service and projects the response onto the shared
// FinalizationOutcome; the reconciliation engine never sees a
// chain-specific type.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/models"
)

// OutcomeKind enumerates the shared finalization states.
type OutcomeKind string

const (
	OutcomeUnknown   OutcomeKind = "Unknown"
	OutcomePending   OutcomeKind = "Pending"
	OutcomeFinalized OutcomeKind = "Finalized"
	OutcomeFailed    OutcomeKind = "Failed"
)

// FinalizationOutcome is the shared projection of every adapter's
// status response. TxHash is set exactly when Kind is
// OutcomeFinalized; the optional fields carry adapter-reported
// corrections applied alongside finalization.
type FinalizationOutcome struct {
	Kind               OutcomeKind
	TxHash             string
	IntermediateTxHash *string
	Amount             *string
	Sender             *string
	Reason             string // set when Kind is OutcomeFailed
}

// Finalized is a shorthand constructor used by adapters and tests.
func Finalized(txHash string) FinalizationOutcome {
	return FinalizationOutcome{Kind: OutcomeFinalized, TxHash: txHash}
}

// ChainAdapter is the per-chain capability consumed by the
// reconciliation engine.
type ChainAdapter interface {
	// ChainID is the hub-registered id of the chain this adapter is
	// bound to.
	ChainID() string

	// FinalizationStatus asks the remote adapter whether the ticket's
	// destination-side effect has completed. Transport failures are
	// reported as *clients.TransportError; any other error is scoped
	// to this single ticket.
	FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error)
}

// CustomAdapter extends ChainAdapter for asset-locking chains whose
// pending-request queue is itself a ticket source. The queue is
// append-ordered; entries may be removed by the custom before the hub
// ever ingests them, which is what the tombstone table covers.
type CustomAdapter interface {
	ChainAdapter

	// PendingTickets returns queue entries starting at offset.
	PendingTickets(ctx context.Context, offset, limit uint64) ([]*models.Ticket, error)

	// PendingTicketIDs returns the ids of every entry currently in
	// the live queue, used to detect removals.
	PendingTicketIDs(ctx context.Context) ([]string, error)
}

// getJSON performs a GET against an adapter endpoint and decodes the
// body into out. Network failures, non-200 responses and undecodable
// bodies are transport errors.
func getJSON(ctx context.Context, client *http.Client, op, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &clients.TransportError{Op: op, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &clients.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &clients.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		// adapters report unknown tickets as 404; not a failure
		return errNotTracked
	}
	if resp.StatusCode != http.StatusOK {
		return &clients.TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &clients.TransportError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// errNotTracked marks a ticket the remote adapter has no record of.
var errNotTracked = fmt.Errorf("adapter: ticket not tracked")
