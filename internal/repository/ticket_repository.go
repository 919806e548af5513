package repository

import (
	"context"
	"time"

	"bridge-syncer/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketRepository is the persistence contract for tickets, their
// tombstones and the custom pending-queue index. All write operations
// are idempotent with respect to the ticket_id natural key, so
// repeated, overlapping and out-of-order sync cycles are safe.
type TicketRepository interface {
	// Save inserts the ticket or, on a ticket_id conflict, updates all
	// mutable fields with the caller's values.
	Save(ctx context.Context, ticket *models.Ticket) error

	// SaveFromHub inserts the ticket; if a row with the same ticket_id
	// already exists (e.g. created earlier by a custom's pending-queue
	// ingestion) only the hub-assigned sequence is written. Hub
	// ingestion never changes a ticket's status.
	SaveFromHub(ctx context.Context, ticket *models.Ticket) error

	// Update applies the non-nil fields of upd to the live ticket row.
	// Returns ErrNotFound when no live row exists.
	Update(ctx context.Context, ticketID string, upd models.TicketUpdate) error

	GetByID(ctx context.Context, ticketID string) (*models.Ticket, error)

	// Unconfirmed is the reconciliation work queue: tickets destined
	// for dstChain whose status is strictly between initial and
	// terminal. Finalized is excluded as terminal; Unknown is excluded
	// as well, which quarantines Unknown tickets from reconciliation
	// permanently. That exclusion mirrors long-standing behavior and
	// is kept deliberately, not fixed here.
	Unconfirmed(ctx context.Context, dstChain string) ([]*models.Ticket, error)

	// Confirmed returns tickets already finalized for dstChain.
	Confirmed(ctx context.Context, dstChain string) ([]*models.Ticket, error)

	// AllFinalized returns every finalized ticket, for aggregate
	// recomputation.
	AllFinalized(ctx context.Context) ([]*models.Ticket, error)

	// UnsyncedBySrcChain returns tickets originated on srcChain that
	// the hub has not ingested yet (no sequence assigned). These are
	// the demotion candidates when a custom drops a queue entry.
	UnsyncedBySrcChain(ctx context.Context, srcChain string) ([]*models.Ticket, error)

	// LatestSeq returns the maximum hub sequence currently stored, or
	// nil when no ticket has a sequence yet.
	LatestSeq(ctx context.Context) (*uint64, error)

	// Tombstone operations mirror the live-ticket operations on the
	// deleted_tickets table.
	SaveTombstone(ctx context.Context, tombstone *models.DeletedTicket) error
	UpdateTombstone(ctx context.Context, ticketID string, upd models.TicketUpdate) error
	GetTombstone(ctx context.Context, ticketID string) (*models.DeletedTicket, error)
	UnconfirmedTombstones(ctx context.Context, dstChain string) ([]*models.DeletedTicket, error)

	// Pending-queue index for custom adapters: one row per consumed
	// pending slot, counted per chain to resume polling.
	AppendPendingIndex(ctx context.Context, chainID, ticketID string) error
	ConsumedPendingSlots(ctx context.Context, chainID string) (uint64, error)
}

// ticketRepository implements TicketRepository
type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository instance
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// ticketMutableColumns are the columns rewritten by a conflicting Save.
// ticket_id and created_at are never touched after insert.
var ticketMutableColumns = []string{
	"ticket_seq", "ticket_type", "ticket_time", "src_chain", "dst_chain",
	"action", "token", "amount", "sender", "receiver", "memo",
	"status", "tx_hash", "intermediate_tx_hash", "updated_at",
}

// Save inserts or fully updates a ticket by its natural key
func (r *ticketRepository) Save(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}},
			DoUpdates: clause.AssignmentColumns(ticketMutableColumns),
		}).
		Create(ticket).Error
}

// SaveFromHub inserts a hub-synced ticket, or assigns its sequence to
// an already-present row
func (r *ticketRepository) SaveFromHub(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"ticket_seq", "updated_at"}),
		}).
		Create(ticket).Error
}

// updateColumns builds the column assignment map for a partial update
func updateColumns(upd models.TicketUpdate) map[string]interface{} {
	cols := map[string]interface{}{}
	if upd.TicketSeq != nil {
		cols["ticket_seq"] = *upd.TicketSeq
	}
	if upd.Status != nil {
		cols["status"] = *upd.Status
	}
	if upd.TxHash != nil {
		cols["tx_hash"] = *upd.TxHash
	}
	if upd.IntermediateTxHash != nil {
		cols["intermediate_tx_hash"] = *upd.IntermediateTxHash
	}
	if upd.Amount != nil {
		cols["amount"] = *upd.Amount
	}
	if upd.Sender != nil {
		cols["sender"] = *upd.Sender
	}
	if len(cols) > 0 {
		cols["updated_at"] = time.Now().UTC()
	}
	return cols
}

// Update applies a partial update to a live ticket
func (r *ticketRepository) Update(ctx context.Context, ticketID string, upd models.TicketUpdate) error {
	cols := updateColumns(upd)
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a ticket by ticket ID
func (r *ticketRepository) GetByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Unconfirmed returns the reconciliation work queue for a destination chain
func (r *ticketRepository) Unconfirmed(ctx context.Context, dstChain string) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.db.WithContext(ctx).
		Where("dst_chain = ? AND status NOT IN ?", dstChain,
			[]models.TicketStatus{models.TicketStatusFinalized, models.TicketStatusUnknown}).
		Order("ticket_time").
		Find(&tickets).Error
	return tickets, err
}

// Confirmed returns finalized tickets for a destination chain
func (r *ticketRepository) Confirmed(ctx context.Context, dstChain string) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.db.WithContext(ctx).
		Where("dst_chain = ? AND status = ?", dstChain, models.TicketStatusFinalized).
		Order("ticket_time").
		Find(&tickets).Error
	return tickets, err
}

// AllFinalized returns every finalized ticket
func (r *ticketRepository) AllFinalized(ctx context.Context) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.db.WithContext(ctx).
		Where("status = ?", models.TicketStatusFinalized).
		Find(&tickets).Error
	return tickets, err
}

// UnsyncedBySrcChain returns hub-unknown tickets originated on a chain
func (r *ticketRepository) UnsyncedBySrcChain(ctx context.Context, srcChain string) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.db.WithContext(ctx).
		Where("src_chain = ? AND ticket_seq IS NULL AND status <> ?", srcChain, models.TicketStatusFinalized).
		Order("ticket_time").
		Find(&tickets).Error
	return tickets, err
}

// LatestSeq returns the maximum non-null ticket sequence
func (r *ticketRepository) LatestSeq(ctx context.Context) (*uint64, error) {
	var seq *uint64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Select("MAX(ticket_seq)").
		Scan(&seq).Error
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// SaveTombstone inserts or fully updates a tombstoned ticket copy
func (r *ticketRepository) SaveTombstone(ctx context.Context, tombstone *models.DeletedTicket) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}},
			DoUpdates: clause.AssignmentColumns(ticketMutableColumns),
		}).
		Create(tombstone).Error
}

// UpdateTombstone applies a partial update to a tombstoned ticket
func (r *ticketRepository) UpdateTombstone(ctx context.Context, ticketID string, upd models.TicketUpdate) error {
	cols := updateColumns(upd)
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.DeletedTicket{}).
		Where("ticket_id = ?", ticketID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTombstone retrieves a tombstoned ticket by ticket ID
func (r *ticketRepository) GetTombstone(ctx context.Context, ticketID string) (*models.DeletedTicket, error) {
	var tombstone models.DeletedTicket
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&tombstone).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tombstone, nil
}

// UnconfirmedTombstones returns tombstoned tickets still awaiting finalization
func (r *ticketRepository) UnconfirmedTombstones(ctx context.Context, dstChain string) ([]*models.DeletedTicket, error) {
	var tombstones []*models.DeletedTicket
	err := r.db.WithContext(ctx).
		Where("dst_chain = ? AND status NOT IN ?", dstChain,
			[]models.TicketStatus{models.TicketStatusFinalized, models.TicketStatusUnknown}).
		Order("ticket_time").
		Find(&tombstones).Error
	return tombstones, err
}

// AppendPendingIndex records one consumed pending-queue slot for a chain
func (r *ticketRepository) AppendPendingIndex(ctx context.Context, chainID, ticketID string) error {
	return r.db.WithContext(ctx).Create(&models.PendingTicketIndex{
		ChainID:  chainID,
		TicketID: ticketID,
	}).Error
}

// ConsumedPendingSlots counts how many pending-queue slots have been
// consumed from a chain's queue so far
func (r *ticketRepository) ConsumedPendingSlots(ctx context.Context, chainID string) (uint64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingTicketIndex{}).
		Where("chain_id = ?", chainID).
		Count(&count).Error
	return uint64(count), err
}
