package services

import (
	"context"
	"errors"
	"fmt"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/clients/adapters"
	"bridge-syncer/internal/events"
	"bridge-syncer/internal/metrics"
	"bridge-syncer/internal/models"
	"bridge-syncer/internal/repository"

	"github.com/sirupsen/logrus"
)

// ReconcileService drives unconfirmed tickets for one chain toward
// the finalization state reported by that chain's adapter. The engine
// is adapter-agnostic: everything chain-specific lives behind the
// ChainAdapter projection.
//
// Error scoping follows the adapter contract: a transport-level error
// abandons the whole cycle (retried next interval); anything else is
// logged and skips only the ticket that produced it.
type ReconcileService struct {
	store     repository.TicketRepository
	adapter   adapters.ChainAdapter
	publisher events.Publisher
	log       *logrus.Entry
}

// NewReconcileService creates a reconciler bound to one adapter
func NewReconcileService(
	store repository.TicketRepository,
	adapter adapters.ChainAdapter,
	publisher events.Publisher,
	log *logrus.Entry,
) *ReconcileService {
	return &ReconcileService{
		store:     store,
		adapter:   adapter,
		publisher: publisher,
		log: log.WithFields(logrus.Fields{
			"service": "reconcile",
			"chain":   adapter.ChainID(),
		}),
	}
}

// finalizeUpdate builds the partial update applied on a finalized
// outcome. Optional adapter-reported corrections ride along.
func finalizeUpdate(outcome adapters.FinalizationOutcome) models.TicketUpdate {
	status := models.TicketStatusFinalized
	return models.TicketUpdate{
		Status:             &status,
		TxHash:             &outcome.TxHash,
		IntermediateTxHash: outcome.IntermediateTxHash,
		Amount:             outcome.Amount,
		Sender:             outcome.Sender,
	}
}

// ReconcileOnce runs one reconciliation cycle over the live work queue.
func (s *ReconcileService) ReconcileOnce(ctx context.Context) error {
	chainID := s.adapter.ChainID()

	tickets, err := s.store.Unconfirmed(ctx, chainID)
	if err != nil {
		metrics.ReconcileCycles.WithLabelValues(chainID, "error").Inc()
		return fmt.Errorf("load unconfirmed tickets for %s: %w", chainID, err)
	}

	for _, ticket := range tickets {
		outcome, err := s.adapter.FinalizationStatus(ctx, ticket.TicketID)
		if err != nil {
			if clients.IsTransport(err) {
				metrics.ReconcileCycles.WithLabelValues(chainID, "aborted").Inc()
				return fmt.Errorf("adapter channel failure: %w", err)
			}
			metrics.TicketsSkipped.WithLabelValues(chainID).Inc()
			s.log.WithError(err).WithField("ticket_id", ticket.TicketID).Warn("skipping ticket this cycle")
			continue
		}

		if outcome.Kind != adapters.OutcomeFinalized {
			// Pending / Unknown / Failed: leave for the next cycle
			if outcome.Kind == adapters.OutcomeFailed {
				s.log.WithFields(logrus.Fields{
					"ticket_id": ticket.TicketID,
					"reason":    outcome.Reason,
				}).Warn("adapter reported failure")
			}
			continue
		}

		if err := s.finalize(ctx, ticket, outcome); err != nil {
			metrics.ReconcileCycles.WithLabelValues(chainID, "error").Inc()
			return err
		}
	}

	metrics.ReconcileCycles.WithLabelValues(chainID, "ok").Inc()
	return nil
}

// finalize persists a finalized outcome, falling back from the live
// row to the tombstone copy when the live row has already been
// demoted away.
func (s *ReconcileService) finalize(ctx context.Context, ticket *models.Ticket, outcome adapters.FinalizationOutcome) error {
	upd := finalizeUpdate(outcome)

	err := s.store.Update(ctx, ticket.TicketID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		err = s.store.UpdateTombstone(ctx, ticket.TicketID, upd)
	}
	if err != nil {
		return fmt.Errorf("finalize ticket %s: %w", ticket.TicketID, err)
	}

	metrics.TicketsFinalized.WithLabelValues(s.adapter.ChainID()).Inc()
	s.log.WithFields(logrus.Fields{
		"ticket_id": ticket.TicketID,
		"tx_hash":   outcome.TxHash,
	}).Info("ticket finalized")

	finalized := *ticket
	finalized.Status = models.TicketStatusFinalized
	finalized.TxHash = &outcome.TxHash
	s.publisher.TicketFinalized(&finalized)
	return nil
}

// ReconcileTombstonesOnce runs the same finalization check against
// tombstoned tickets whose live pending record is gone. Used for
// custom chains whose queue can drop an entry before the hub ever
// ingests it.
func (s *ReconcileService) ReconcileTombstonesOnce(ctx context.Context) error {
	chainID := s.adapter.ChainID()

	tombstones, err := s.store.UnconfirmedTombstones(ctx, chainID)
	if err != nil {
		return fmt.Errorf("load unconfirmed tombstones for %s: %w", chainID, err)
	}

	for _, tombstone := range tombstones {
		outcome, err := s.adapter.FinalizationStatus(ctx, tombstone.TicketID)
		if err != nil {
			if clients.IsTransport(err) {
				return fmt.Errorf("adapter channel failure: %w", err)
			}
			metrics.TicketsSkipped.WithLabelValues(chainID).Inc()
			s.log.WithError(err).WithField("ticket_id", tombstone.TicketID).Warn("skipping tombstone this cycle")
			continue
		}
		if outcome.Kind != adapters.OutcomeFinalized {
			continue
		}

		if err := s.store.UpdateTombstone(ctx, tombstone.TicketID, finalizeUpdate(outcome)); err != nil {
			return fmt.Errorf("finalize tombstone %s: %w", tombstone.TicketID, err)
		}

		metrics.TicketsFinalized.WithLabelValues(chainID).Inc()
		s.log.WithFields(logrus.Fields{
			"ticket_id": tombstone.TicketID,
			"tx_hash":   outcome.TxHash,
		}).Info("tombstoned ticket finalized")
	}
	return nil
}
