package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bridge-syncer/internal/clients/adapters"
	"bridge-syncer/internal/events"
	"bridge-syncer/internal/metrics"
	"bridge-syncer/internal/repository"

	"github.com/sirupsen/logrus"
)

// pendingPageSize is the fixed page size for custom queue polls.
const pendingPageSize = 50

// PendingQueueService ingests tickets from a custom's pending-request
// queue ahead of hub ingestion, and demotes tickets to tombstones when
// the custom drops a queue entry the hub never recorded.
//
// The PendingTicketIndex table holds one row per consumed queue slot;
// its per-chain count is the resume offset, recomputed from the table
// every run.
type PendingQueueService struct {
	store     repository.TicketRepository
	custom    adapters.CustomAdapter
	publisher events.Publisher
	log       *logrus.Entry

	pageSize uint64
}

// NewPendingQueueService creates a poller for one custom adapter
func NewPendingQueueService(
	store repository.TicketRepository,
	custom adapters.CustomAdapter,
	publisher events.Publisher,
	log *logrus.Entry,
) *PendingQueueService {
	return &PendingQueueService{
		store:     store,
		custom:    custom,
		publisher: publisher,
		log: log.WithFields(logrus.Fields{
			"service": "pending_queue",
			"chain":   custom.ChainID(),
		}),
		pageSize: pendingPageSize,
	}
}

// PollOnce ingests newly queued tickets and then checks for removals.
func (s *PendingQueueService) PollOnce(ctx context.Context) error {
	if err := s.ingest(ctx); err != nil {
		return err
	}
	return s.demoteRemoved(ctx)
}

// ingest pages through queue entries past the consumed offset. Saving
// is conflict-tolerant and the index row is only appended after a
// successful save, so a poll killed between the two resumes cleanly.
func (s *PendingQueueService) ingest(ctx context.Context) error {
	chainID := s.custom.ChainID()

	offset, err := s.store.ConsumedPendingSlots(ctx, chainID)
	if err != nil {
		return fmt.Errorf("read consumed pending slots for %s: %w", chainID, err)
	}

	for {
		page, err := s.custom.PendingTickets(ctx, offset, s.pageSize)
		if err != nil {
			return fmt.Errorf("fetch pending tickets for %s at %d: %w", chainID, offset, err)
		}
		if len(page) == 0 {
			return nil
		}

		for _, ticket := range page {
			if err := s.store.Save(ctx, ticket); err != nil {
				return fmt.Errorf("save pending ticket %s: %w", ticket.TicketID, err)
			}
			if err := s.store.AppendPendingIndex(ctx, chainID, ticket.TicketID); err != nil {
				return fmt.Errorf("append pending index for %s: %w", ticket.TicketID, err)
			}
			offset++
			s.log.WithField("ticket_id", ticket.TicketID).Info("ingested pending ticket")
		}

		if uint64(len(page)) < s.pageSize {
			return nil
		}
	}
}

// demoteRemoved tombstones tickets whose queue entry disappeared while
// the hub still has no record of them (sequence still unassigned). A
// ticket is demoted at most once; an existing tombstone short-circuits.
func (s *PendingQueueService) demoteRemoved(ctx context.Context) error {
	chainID := s.custom.ChainID()

	liveIDs, err := s.custom.PendingTicketIDs(ctx)
	if err != nil {
		return fmt.Errorf("fetch live pending ids for %s: %w", chainID, err)
	}
	live := make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = struct{}{}
	}

	// hub-unknown tickets this custom originated, in consumption order
	tickets, err := s.store.UnsyncedBySrcChain(ctx, chainID)
	if err != nil {
		return fmt.Errorf("load unsynced tickets for %s: %w", chainID, err)
	}

	for _, ticket := range tickets {
		if _, stillQueued := live[ticket.TicketID]; stillQueued {
			continue
		}
		if _, err := s.store.GetTombstone(ctx, ticket.TicketID); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check tombstone for %s: %w", ticket.TicketID, err)
		}

		tombstone := ticket.Tombstone(time.Now().UTC())
		if err := s.store.SaveTombstone(ctx, tombstone); err != nil {
			return fmt.Errorf("save tombstone for %s: %w", ticket.TicketID, err)
		}

		metrics.TombstonesCreated.WithLabelValues(chainID).Inc()
		s.publisher.TicketDemoted(tombstone)
		s.log.WithField("ticket_id", ticket.TicketID).Warn("pending queue entry removed before hub ingestion, ticket tombstoned")
	}
	return nil
}
