package repository

import (
	"context"

	"bridge-syncer/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChainRepository defines the interface for Chain metadata access
type ChainRepository interface {
	// Save inserts the chain or, on a chain_id conflict, updates all
	// mutable fields. Safe to call repeatedly with the same key.
	Save(ctx context.Context, chain *models.Chain) error
	GetByID(ctx context.Context, chainID string) (*models.Chain, error)
	List(ctx context.Context) ([]*models.Chain, error)
	ListByType(ctx context.Context, chainType models.ChainType) ([]*models.Chain, error)
}

// chainRepository implements ChainRepository
type chainRepository struct {
	db *gorm.DB
}

// NewChainRepository creates a new ChainRepository instance
func NewChainRepository(db *gorm.DB) ChainRepository {
	return &chainRepository{db: db}
}

// Save inserts or updates a chain by its natural key
func (r *chainRepository) Save(ctx context.Context, chain *models.Chain) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "chain_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"canister_id", "chain_type", "chain_state", "contract_address",
				"counterparties", "fee_token", "updated_at",
			}),
		}).
		Create(chain).Error
}

// GetByID retrieves a chain by chain ID
func (r *chainRepository) GetByID(ctx context.Context, chainID string) (*models.Chain, error) {
	var chain models.Chain
	err := r.db.WithContext(ctx).Where("chain_id = ?", chainID).First(&chain).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// List retrieves all chains
func (r *chainRepository) List(ctx context.Context) ([]*models.Chain, error) {
	var chains []*models.Chain
	err := r.db.WithContext(ctx).Order("chain_id").Find(&chains).Error
	return chains, err
}

// ListByType retrieves chains filtered by settlement/execution role
func (r *chainRepository) ListByType(ctx context.Context, chainType models.ChainType) ([]*models.Chain, error) {
	var chains []*models.Chain
	err := r.db.WithContext(ctx).
		Where("chain_type = ?", chainType).
		Order("chain_id").
		Find(&chains).Error
	return chains, err
}
