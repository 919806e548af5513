package repository

import (
	"context"

	"bridge-syncer/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository defines the interface for Token metadata access
type TokenRepository interface {
	// Save inserts the token or, on a token_id conflict, updates all
	// mutable fields. Safe to call repeatedly with the same key.
	Save(ctx context.Context, token *models.Token) error
	GetByID(ctx context.Context, tokenID string) (*models.Token, error)
	List(ctx context.Context) ([]*models.Token, error)

	// SaveVolume upserts the derived per-token aggregate row.
	SaveVolume(ctx context.Context, volume *models.TokenVolume) error
	GetVolume(ctx context.Context, tokenID string) (*models.TokenVolume, error)
}

// tokenRepository implements TokenRepository
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Save inserts or updates a token by its natural key
func (r *tokenRepository) Save(ctx context.Context, token *models.Token) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "symbol", "issue_chain", "decimals", "icon",
				"metadata", "dst_chains", "updated_at",
			}),
		}).
		Create(token).Error
}

// GetByID retrieves a token by token ID
func (r *tokenRepository) GetByID(ctx context.Context, tokenID string) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// List retrieves all tokens
func (r *tokenRepository) List(ctx context.Context) ([]*models.Token, error) {
	var tokens []*models.Token
	err := r.db.WithContext(ctx).Order("token_id").Find(&tokens).Error
	return tokens, err
}

// SaveVolume upserts a token volume aggregate
func (r *tokenRepository) SaveVolume(ctx context.Context, volume *models.TokenVolume) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ticket_count", "total_volume", "updated_at",
			}),
		}).
		Create(volume).Error
}

// GetVolume retrieves the aggregate row for a token
func (r *tokenRepository) GetVolume(ctx context.Context, tokenID string) (*models.TokenVolume, error) {
	var volume models.TokenVolume
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&volume).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &volume, nil
}
