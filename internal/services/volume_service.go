package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"bridge-syncer/internal/models"
	"bridge-syncer/internal/repository"

	"github.com/sirupsen/logrus"
)

// TokenVolumeService recomputes the per-token ticket count and
// historical volume aggregates. The aggregates are derived state,
// rebuilt in full each run; a stale row is corrected on the next run.
type TokenVolumeService struct {
	tickets repository.TicketRepository
	tokens  repository.TokenRepository
	log     *logrus.Entry
}

// NewTokenVolumeService creates a new TokenVolumeService instance
func NewTokenVolumeService(
	tickets repository.TicketRepository,
	tokens repository.TokenRepository,
	log *logrus.Entry,
) *TokenVolumeService {
	return &TokenVolumeService{
		tickets: tickets,
		tokens:  tokens,
		log:     log.WithField("service", "token_volume"),
	}
}

// RecomputeOnce rebuilds every token's aggregate from finalized
// tickets. Amounts are arbitrary-precision decimal strings; a ticket
// with an unparseable amount is counted but excluded from the sum.
func (s *TokenVolumeService) RecomputeOnce(ctx context.Context) error {
	finalized, err := s.tickets.AllFinalized(ctx)
	if err != nil {
		return fmt.Errorf("load finalized tickets: %w", err)
	}

	counts := map[string]int64{}
	volumes := map[string]*big.Int{}
	for _, ticket := range finalized {
		counts[ticket.Token]++
		amount, ok := new(big.Int).SetString(ticket.Amount, 10)
		if !ok {
			s.log.WithFields(logrus.Fields{
				"ticket_id": ticket.TicketID,
				"amount":    ticket.Amount,
			}).Warn("unparseable ticket amount excluded from volume")
			continue
		}
		if volumes[ticket.Token] == nil {
			volumes[ticket.Token] = new(big.Int)
		}
		volumes[ticket.Token].Add(volumes[ticket.Token], amount)
	}

	for tokenID, count := range counts {
		total := "0"
		if v := volumes[tokenID]; v != nil {
			total = v.String()
		}
		if err := s.tokens.SaveVolume(ctx, &models.TokenVolume{
			TokenID:     tokenID,
			TicketCount: count,
			TotalVolume: total,
			UpdatedAt:   time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("save volume for token %s: %w", tokenID, err)
		}
	}
	return nil
}
