package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/clients/adapters"
	"bridge-syncer/internal/models"
	"bridge-syncer/internal/repository"

	"github.com/stretchr/testify/require"
)

// fakeAdapter returns a fixed outcome or error per ticket id and
// records which tickets were queried.
type fakeAdapter struct {
	chainID  string
	outcomes map[string]adapters.FinalizationOutcome
	errs     map[string]error
	queried  []string
}

func (a *fakeAdapter) ChainID() string { return a.chainID }

func (a *fakeAdapter) FinalizationStatus(ctx context.Context, ticketID string) (adapters.FinalizationOutcome, error) {
	a.queried = append(a.queried, ticketID)
	if err, ok := a.errs[ticketID]; ok {
		return adapters.FinalizationOutcome{}, err
	}
	if outcome, ok := a.outcomes[ticketID]; ok {
		return outcome, nil
	}
	return adapters.FinalizationOutcome{Kind: adapters.OutcomeUnknown}, nil
}

func newReconcileFixture(t *testing.T, adapter *fakeAdapter) (*ReconcileService, repository.TicketRepository, *recordingPublisher) {
	t.Helper()
	store := repository.NewTicketRepository(newTestDB(t))
	publisher := &recordingPublisher{}
	return NewReconcileService(store, adapter, publisher, testLog()), store, publisher
}

func TestReconcileFinalizesTicket(t *testing.T) {
	adapter := &fakeAdapter{
		chainID: "eICP",
		outcomes: map[string]adapters.FinalizationOutcome{
			"ticket-1": adapters.Finalized("0xabc"),
		},
	}
	svc, store, publisher := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-1", "eICP", models.TicketStatusWaitingForConfirmByDest)))
	require.NoError(t, svc.ReconcileOnce(testCtx))

	stored, err := store.GetByID(testCtx, "ticket-1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusFinalized, stored.Status)
	require.Equal(t, "0xabc", *stored.TxHash)
	require.Equal(t, []string{"ticket-1"}, publisher.finalized)
}

func TestReconcileLeavesFinalizedAlone(t *testing.T) {
	adapter := &fakeAdapter{chainID: "eICP"}
	svc, store, _ := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-done", "eICP", models.TicketStatusFinalized, func(tk *models.Ticket) {
		tk.TxHash = strPtr("0xdone")
	})))
	require.NoError(t, svc.ReconcileOnce(testCtx))

	// finalized tickets never re-enter the work queue
	require.Empty(t, adapter.queried)
	stored, err := store.GetByID(testCtx, "ticket-done")
	require.NoError(t, err)
	require.Equal(t, "0xdone", *stored.TxHash)
}

func TestReconcileAppliesAdapterCorrections(t *testing.T) {
	adapter := &fakeAdapter{
		chainID: "eICP",
		outcomes: map[string]adapters.FinalizationOutcome{
			"ticket-1": {
				Kind:               adapters.OutcomeFinalized,
				TxHash:             "0xabc",
				IntermediateTxHash: strPtr("0xmid"),
				Amount:             strPtr("99000"),
			},
		},
	}
	svc, store, _ := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-1", "eICP", models.TicketStatusPending)))
	require.NoError(t, svc.ReconcileOnce(testCtx))

	stored, err := store.GetByID(testCtx, "ticket-1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusFinalized, stored.Status)
	require.Equal(t, "0xmid", *stored.IntermediateTxHash)
	require.Equal(t, "99000", stored.Amount)
}

func TestReconcileItemErrorSkipsOnlyThatTicket(t *testing.T) {
	adapter := &fakeAdapter{
		chainID: "eICP",
		outcomes: map[string]adapters.FinalizationOutcome{
			"ticket-2": adapters.Finalized("0xabc"),
		},
		errs: map[string]error{
			"ticket-1": errors.New("malformed status payload"),
		},
	}
	svc, store, _ := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-1", "eICP", models.TicketStatusWaitingForConfirmByDest)))
	require.NoError(t, store.Save(testCtx, storedTicket("ticket-2", "eICP", models.TicketStatusWaitingForConfirmByDest, func(tk *models.Ticket) {
		tk.TicketTime = tk.TicketTime.Add(time.Minute)
	})))

	require.NoError(t, svc.ReconcileOnce(testCtx))

	skipped, err := store.GetByID(testCtx, "ticket-1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusWaitingForConfirmByDest, skipped.Status)

	finalized, err := store.GetByID(testCtx, "ticket-2")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusFinalized, finalized.Status)
}

func TestReconcileTransportErrorAbortsCycle(t *testing.T) {
	adapter := &fakeAdapter{
		chainID: "eICP",
		outcomes: map[string]adapters.FinalizationOutcome{
			"ticket-2": adapters.Finalized("0xabc"),
		},
		errs: map[string]error{
			"ticket-1": &clients.TransportError{Op: "mint_tx", Err: errors.New("connection refused")},
		},
	}
	svc, store, _ := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-1", "eICP", models.TicketStatusWaitingForConfirmByDest)))
	require.NoError(t, store.Save(testCtx, storedTicket("ticket-2", "eICP", models.TicketStatusWaitingForConfirmByDest, func(tk *models.Ticket) {
		tk.TicketTime = tk.TicketTime.Add(time.Minute)
	})))

	require.Error(t, svc.ReconcileOnce(testCtx))

	// the whole cycle is abandoned; the later ticket was never asked
	require.Equal(t, []string{"ticket-1"}, adapter.queried)
	untouched, err := store.GetByID(testCtx, "ticket-2")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusWaitingForConfirmByDest, untouched.Status)
}

func TestReconcileUnknownStaysQuarantined(t *testing.T) {
	adapter := &fakeAdapter{chainID: "eICP"}
	svc, store, _ := newReconcileFixture(t, adapter)

	require.NoError(t, store.Save(testCtx, storedTicket("ticket-odd", "eICP", models.TicketStatusUnknown)))
	require.NoError(t, svc.ReconcileOnce(testCtx))

	require.Empty(t, adapter.queried)
}

func TestReconcileTombstonesOnce(t *testing.T) {
	adapter := &fakeAdapter{
		chainID: "eICP",
		outcomes: map[string]adapters.FinalizationOutcome{
			"ticket-gone": adapters.Finalized("0xabc"),
		},
	}
	svc, store, _ := newReconcileFixture(t, adapter)

	ticket := storedTicket("ticket-gone", "eICP", models.TicketStatusWaitingForConfirmByDest)
	require.NoError(t, store.SaveTombstone(testCtx, ticket.Tombstone(time.Now().UTC())))

	require.NoError(t, svc.ReconcileTombstonesOnce(testCtx))

	tombstone, err := store.GetTombstone(testCtx, "ticket-gone")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusFinalized, tombstone.Status)
	require.Equal(t, "0xabc", *tombstone.TxHash)

	// finalized tombstones drop out of the work queue
	remaining, err := store.UnconfirmedTombstones(testCtx, "eICP")
	require.NoError(t, err)
	require.Empty(t, remaining)
}
