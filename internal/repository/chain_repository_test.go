package repository

import (
	"context"
	"testing"

	"bridge-syncer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainSaveIsIdempotent(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewChainRepository(gdb)
	ctx := context.Background()

	chain := &models.Chain{
		ChainID:    "eICP",
		CanisterID: "aaaaa-aa",
		ChainType:  models.ChainTypeExecution,
		ChainState: models.ChainStateActive,
	}
	require.NoError(t, repo.Save(ctx, chain))
	require.NoError(t, repo.Save(ctx, &models.Chain{
		ChainID:    "eICP",
		CanisterID: "aaaaa-aa",
		ChainType:  models.ChainTypeExecution,
		ChainState: models.ChainStateDeactive, // second save wins
	}))

	var count int64
	require.NoError(t, gdb.Model(&models.Chain{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetByID(ctx, "eICP")
	require.NoError(t, err)
	assert.Equal(t, models.ChainStateDeactive, stored.ChainState)
}

func TestChainListByType(t *testing.T) {
	repo := NewChainRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Chain{
		ChainID: "Bitcoin", ChainType: models.ChainTypeSettlement, ChainState: models.ChainStateActive,
	}))
	require.NoError(t, repo.Save(ctx, &models.Chain{
		ChainID: "eICP", ChainType: models.ChainTypeExecution, ChainState: models.ChainStateActive,
	}))

	settlements, err := repo.ListByType(ctx, models.ChainTypeSettlement)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, "Bitcoin", settlements[0].ChainID)
}

func TestChainGetMissingReturnsErrNotFound(t *testing.T) {
	repo := NewChainRepository(newTestDB(t))
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenSaveIsIdempotent(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewTokenRepository(gdb)
	ctx := context.Background()

	token := &models.Token{
		TokenID:    "Bitcoin-runes-HOPE",
		Name:       "HOPE",
		Symbol:     "HOPE",
		IssueChain: "Bitcoin",
		Decimals:   8,
		Metadata:   map[string]string{"rune_id": "840000:846"},
	}
	require.NoError(t, repo.Save(ctx, token))

	token.Symbol = "HOPE2"
	require.NoError(t, repo.Save(ctx, token))

	var count int64
	require.NoError(t, gdb.Model(&models.Token{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetByID(ctx, "Bitcoin-runes-HOPE")
	require.NoError(t, err)
	assert.Equal(t, "HOPE2", stored.Symbol)
	assert.Equal(t, "840000:846", stored.Metadata["rune_id"])
}

func TestTokenVolumeUpsert(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveVolume(ctx, &models.TokenVolume{
		TokenID: "tok", TicketCount: 1, TotalVolume: "100",
	}))
	require.NoError(t, repo.SaveVolume(ctx, &models.TokenVolume{
		TokenID: "tok", TicketCount: 3, TotalVolume: "450",
	}))

	stored, err := repo.GetVolume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.TicketCount)
	assert.Equal(t, "450", stored.TotalVolume)
}
