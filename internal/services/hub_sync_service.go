package services

import (
	"context"
	"fmt"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/metrics"
	"bridge-syncer/internal/repository"

	"github.com/sirupsen/logrus"
)

// hubPageSize is the fixed page size for all hub queries.
const hubPageSize = 50

// HubSyncService mirrors the hub ledger into the store. Chain and
// token metadata are re-scanned in full every run; tickets are synced
// incrementally from the stored sequence watermark. The watermark is
// recomputed fresh each run and never cached, so a run killed mid-page
// simply resumes from durable state next interval.
type HubSyncService struct {
	hub     clients.HubClient
	chains  repository.ChainRepository
	tokens  repository.TokenRepository
	tickets repository.TicketRepository
	log     *logrus.Entry

	// pageSize is fixed at hubPageSize; a field so tests can shrink it
	pageSize uint64
}

// NewHubSyncService creates a new HubSyncService instance
func NewHubSyncService(
	hub clients.HubClient,
	chains repository.ChainRepository,
	tokens repository.TokenRepository,
	tickets repository.TicketRepository,
	log *logrus.Entry,
) *HubSyncService {
	return &HubSyncService{
		hub:      hub,
		chains:   chains,
		tokens:   tokens,
		tickets:  tickets,
		log:      log.WithField("service", "hub_sync"),
		pageSize: hubPageSize,
	}
}

// SyncChains re-scans all chain metadata from the hub
func (s *HubSyncService) SyncChains(ctx context.Context) error {
	size, err := s.hub.GetChainSize(ctx)
	if err != nil {
		return fmt.Errorf("get chain size: %w", err)
	}

	var fetched uint64
	for fetched < size {
		page, err := s.hub.GetChainMetas(ctx, fetched, s.pageSize)
		if err != nil {
			return fmt.Errorf("get chain metas at %d: %w", fetched, err)
		}
		metrics.HubSyncPagesFetched.WithLabelValues("chain").Inc()

		for _, chain := range page {
			if err := s.chains.Save(ctx, chain); err != nil {
				return fmt.Errorf("save chain %s: %w", chain.ChainID, err)
			}
		}

		fetched += uint64(len(page))
		if uint64(len(page)) < s.pageSize {
			// short page means end of stream even if the reported
			// size moved under us
			break
		}
	}

	s.log.WithField("chains", fetched).Debug("chain metadata sync complete")
	return nil
}

// SyncTokens re-scans all token metadata from the hub
func (s *HubSyncService) SyncTokens(ctx context.Context) error {
	size, err := s.hub.GetTokenSize(ctx)
	if err != nil {
		return fmt.Errorf("get token size: %w", err)
	}

	var fetched uint64
	for fetched < size {
		page, err := s.hub.GetTokenMetas(ctx, fetched, s.pageSize)
		if err != nil {
			return fmt.Errorf("get token metas at %d: %w", fetched, err)
		}
		metrics.HubSyncPagesFetched.WithLabelValues("token").Inc()

		for _, token := range page {
			if err := s.tokens.Save(ctx, token); err != nil {
				return fmt.Errorf("save token %s: %w", token.TokenID, err)
			}
		}

		fetched += uint64(len(page))
		if uint64(len(page)) < s.pageSize {
			break
		}
	}

	s.log.WithField("tokens", fetched).Debug("token metadata sync complete")
	return nil
}

// SyncTickets ingests the hub ticket log from the stored watermark.
// Each (seq, ticket) pair is persisted with its hub sequence; existing
// rows only get their sequence corrected, never a status change.
func (s *HubSyncService) SyncTickets(ctx context.Context) error {
	var offset uint64
	latest, err := s.tickets.LatestSeq(ctx)
	if err != nil {
		return fmt.Errorf("read latest seq: %w", err)
	}
	if latest != nil {
		offset = *latest + 1
	}

	size, err := s.hub.SyncTicketSize(ctx)
	if err != nil {
		return fmt.Errorf("sync ticket size: %w", err)
	}
	if offset >= size {
		return nil
	}

	for offset < size {
		limit := s.pageSize
		if remaining := size - offset; remaining < limit {
			// never over-fetch past the reported log end
			limit = remaining
		}

		page, err := s.hub.SyncTickets(ctx, offset, limit)
		if err != nil {
			return fmt.Errorf("sync tickets at %d: %w", offset, err)
		}
		metrics.HubSyncPagesFetched.WithLabelValues("ticket").Inc()

		for _, entry := range page {
			ticket := entry.Ticket.ToModel(entry.Seq)
			if err := s.tickets.SaveFromHub(ctx, ticket); err != nil {
				return fmt.Errorf("save ticket %s (seq %d): %w", ticket.TicketID, entry.Seq, err)
			}
			metrics.HubTicketsIngested.Inc()
			metrics.HubLatestSeq.Set(float64(entry.Seq))
		}

		offset += uint64(len(page))
		if uint64(len(page)) < limit {
			break
		}
	}

	s.log.WithField("next_offset", offset).Debug("ticket sync complete")
	return nil
}
