package models

import "time"

// TicketStatus lifecycle enum. Finalized is terminal; there is no
// transition out of it. Unknown tickets are excluded from the
// reconciliation work queue (see TicketRepository.Unconfirmed).
type TicketStatus string

const (
	TicketStatusUnknown                 TicketStatus = "Unknown"
	TicketStatusWaitingForConfirmBySrc  TicketStatus = "WaitingForConfirmBySrc"
	TicketStatusWaitingForConfirmByDest TicketStatus = "WaitingForConfirmByDest"
	TicketStatusPending                 TicketStatus = "Pending"
	TicketStatusFinalized               TicketStatus = "Finalized"
)

// TicketType enum
type TicketType string

const (
	TicketTypeNormal   TicketType = "Normal"
	TicketTypeResubmit TicketType = "Resubmit"
)

// TicketAction enum
type TicketAction string

const (
	ActionTransfer            TicketAction = "Transfer"
	ActionRedeem              TicketAction = "Redeem"
	ActionBurn                TicketAction = "Burn"
	ActionMint                TicketAction = "Mint"
	ActionRedeemChainKeyAsset TicketAction = "RedeemChainKeyAsset"
)

// Ticket is a single cross-chain transfer record.
//
// TicketID is assigned once at creation and never changes. TicketSeq is
// the hub-assigned ingestion sequence; it stays nil until the hub has
// recorded the ticket (customs can observe a deposit before the hub
// does) and once set is never reassigned. Amount is kept as a decimal
// string to avoid precision loss across chains with different widths.
type Ticket struct {
	TicketID           string       `json:"ticket_id" gorm:"primaryKey;type:varchar(255)"`
	TicketSeq          *uint64      `json:"ticket_seq,omitempty" gorm:"uniqueIndex:idx_ticket_seq"`
	TicketType         TicketType   `json:"ticket_type" gorm:"type:varchar(32);not null"`
	TicketTime         time.Time    `json:"ticket_time"`
	SrcChain           string       `json:"src_chain" gorm:"type:varchar(255);not null;index:idx_src_chain"`
	DstChain           string       `json:"dst_chain" gorm:"type:varchar(255);not null;index:idx_dst_chain_status,priority:1"`
	Action             TicketAction `json:"action" gorm:"type:varchar(32);not null"`
	Token              string       `json:"token" gorm:"type:varchar(255);not null;index:idx_token"`
	Amount             string       `json:"amount" gorm:"type:varchar(255);not null"`
	Sender             *string      `json:"sender,omitempty" gorm:"type:varchar(255)"`
	Receiver           string       `json:"receiver" gorm:"type:varchar(255)"`
	Memo               []byte       `json:"memo,omitempty" gorm:"type:bytea"`
	Status             TicketStatus `json:"status" gorm:"type:varchar(32);not null;index:idx_dst_chain_status,priority:2"`
	TxHash             *string      `json:"tx_hash,omitempty" gorm:"type:varchar(255)"`
	IntermediateTxHash *string      `json:"intermediate_tx_hash,omitempty" gorm:"type:varchar(255)"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// DeletedTicket is a tombstoned copy of a Ticket, taken at the moment
// its custom-side pending queue entry was removed before the hub had
// ingested it. Kept so reconciliation can still drive the ticket to
// Finalized after the live pending record is gone.
type DeletedTicket struct {
	TicketID           string       `json:"ticket_id" gorm:"primaryKey;type:varchar(255)"`
	TicketSeq          *uint64      `json:"ticket_seq,omitempty"`
	TicketType         TicketType   `json:"ticket_type" gorm:"type:varchar(32);not null"`
	TicketTime         time.Time    `json:"ticket_time"`
	SrcChain           string       `json:"src_chain" gorm:"type:varchar(255);not null"`
	DstChain           string       `json:"dst_chain" gorm:"type:varchar(255);not null;index:idx_deleted_dst_chain_status,priority:1"`
	Action             TicketAction `json:"action" gorm:"type:varchar(32);not null"`
	Token              string       `json:"token" gorm:"type:varchar(255);not null"`
	Amount             string       `json:"amount" gorm:"type:varchar(255);not null"`
	Sender             *string      `json:"sender,omitempty" gorm:"type:varchar(255)"`
	Receiver           string       `json:"receiver" gorm:"type:varchar(255)"`
	Memo               []byte       `json:"memo,omitempty" gorm:"type:bytea"`
	Status             TicketStatus `json:"status" gorm:"type:varchar(32);not null;index:idx_deleted_dst_chain_status,priority:2"`
	TxHash             *string      `json:"tx_hash,omitempty" gorm:"type:varchar(255)"`
	IntermediateTxHash *string      `json:"intermediate_tx_hash,omitempty" gorm:"type:varchar(255)"`
	DeletedAt          time.Time    `json:"deleted_at"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Tombstone builds the DeletedTicket copy of t. The live row's fields
// are carried over verbatim; only the demotion timestamp is new.
func (t *Ticket) Tombstone(deletedAt time.Time) *DeletedTicket {
	return &DeletedTicket{
		TicketID:           t.TicketID,
		TicketSeq:          t.TicketSeq,
		TicketType:         t.TicketType,
		TicketTime:         t.TicketTime,
		SrcChain:           t.SrcChain,
		DstChain:           t.DstChain,
		Action:             t.Action,
		Token:              t.Token,
		Amount:             t.Amount,
		Sender:             t.Sender,
		Receiver:           t.Receiver,
		Memo:               t.Memo,
		Status:             t.Status,
		TxHash:             t.TxHash,
		IntermediateTxHash: t.IntermediateTxHash,
		DeletedAt:          deletedAt,
	}
}

// PendingTicketIndex tracks how many pending-queue slots have been
// consumed from a custom adapter's queue. One row per consumed slot;
// the max index per chain is the resume offset for the next poll.
type PendingTicketIndex struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ChainID   string    `json:"chain_id" gorm:"type:varchar(255);not null;index:idx_pending_chain"`
	TicketID  string    `json:"ticket_id" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketUpdate is a field-level partial update for a Ticket (or its
// tombstone). Nil fields are left untouched.
type TicketUpdate struct {
	TicketSeq          *uint64
	Status             *TicketStatus
	TxHash             *string
	IntermediateTxHash *string
	Amount             *string
	Sender             *string
}
