package services

import (
	"context"
	"io"
	"testing"
	"time"

	"bridge-syncer/internal/db"
	"bridge-syncer/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func testLog() *logrus.Entry {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logrus.NewEntry(base)
}

func seqPtr(v uint64) *uint64 { return &v }
func strPtr(v string) *string { return &v }

func storedTicket(id, dstChain string, status models.TicketStatus, mutate ...func(*models.Ticket)) *models.Ticket {
	ticket := &models.Ticket{
		TicketID:   id,
		TicketType: models.TicketTypeNormal,
		TicketTime: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		SrcChain:   "Bitcoin",
		DstChain:   dstChain,
		Action:     models.ActionTransfer,
		Token:      "Bitcoin-runes-HOPE",
		Amount:     "100000",
		Receiver:   "receiver",
		Status:     status,
	}
	for _, m := range mutate {
		m(ticket)
	}
	return ticket
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	finalized []string
	demoted   []string
}

func (p *recordingPublisher) TicketFinalized(t *models.Ticket) {
	p.finalized = append(p.finalized, t.TicketID)
}

func (p *recordingPublisher) TicketDemoted(t *models.DeletedTicket) {
	p.demoted = append(p.demoted, t.TicketID)
}

func (p *recordingPublisher) Close() {}

var testCtx = context.Background()
