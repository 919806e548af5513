package models

import (
	"time"

	"github.com/lib/pq"
)

// ChainType distinguishes the hub-side role of a chain
type ChainType string

const (
	ChainTypeSettlement ChainType = "SettlementChain" // assets are locked/burned here (custom side)
	ChainTypeExecution  ChainType = "ExecutionChain"  // assets are minted/released here (route side)
)

// ChainState enum
type ChainState string

const (
	ChainStateActive   ChainState = "Active"
	ChainStateDeactive ChainState = "Deactive"
)

// Chain mirrors a chain registered on the hub ledger.
// Written only by the hub metadata sync; chain_id never changes once stored.
type Chain struct {
	ChainID         string         `json:"chain_id" gorm:"primaryKey;type:varchar(255)"`
	CanisterID      string         `json:"canister_id" gorm:"type:varchar(255)"`
	ChainType       ChainType      `json:"chain_type" gorm:"type:varchar(32);not null"`
	ChainState      ChainState     `json:"chain_state" gorm:"type:varchar(32);not null"`
	ContractAddress *string        `json:"contract_address,omitempty" gorm:"type:varchar(255)"`
	Counterparties  pq.StringArray `json:"counterparties,omitempty" gorm:"type:text[]"`
	FeeToken        *string        `json:"fee_token,omitempty" gorm:"type:varchar(255)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Token mirrors a token registered on the hub ledger.
type Token struct {
	TokenID    string            `json:"token_id" gorm:"primaryKey;type:varchar(255)"`
	Name       string            `json:"name" gorm:"type:varchar(255);not null"`
	Symbol     string            `json:"symbol" gorm:"type:varchar(64);not null"`
	IssueChain string            `json:"issue_chain" gorm:"type:varchar(255);not null"` // soft reference to Chain, see note below
	Decimals   uint8             `json:"decimals"`
	Icon       *string           `json:"icon,omitempty" gorm:"type:text"`
	Metadata   map[string]string `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	DstChains  pq.StringArray    `json:"dst_chains,omitempty" gorm:"type:text[]"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Referential integrity across Chain/Token/Ticket is eventually consistent:
// hub sync, ticket sync and custom-queue ingestion run on independent timers,
// so a ticket may reference a token or chain that has not been synced yet.
// No hard foreign keys are created; readers validate references at query time.

// TokenVolume aggregate per token. Derived, recomputed by an explicit
// scheduler task; never authoritative.
type TokenVolume struct {
	TokenID     string    `json:"token_id" gorm:"primaryKey;type:varchar(255)"`
	TicketCount int64     `json:"ticket_count" gorm:"not null;default:0"`
	TotalVolume string    `json:"total_volume" gorm:"type:varchar(255);not null;default:'0'"`
	UpdatedAt   time.Time `json:"updated_at"`
}
