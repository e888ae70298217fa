package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/models"
)

func newTestNoteRepo(t *testing.T) (NoteRepository, *memNoteStore, []byte, *virtualClock) {
	t.Helper()
	cipher := crypto.NewCipher()
	key, err := cipher.GenerateVaultKey()
	require.NoError(t, err)

	notes := newMemNoteStore()
	clock := newVirtualClock()
	repo := NewNoteRepository(cipher, key, notes, clock, logger.Nop())
	return repo, notes, key, clock
}

func TestNoteRepository_SaveGetRoundTrip(t *testing.T) {
	repo, notes, _, _ := newTestNoteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "14-03-2026", "dentist at noon"))

	got, err := repo.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	assert.Equal(t, "dentist at noon", got.Content)
	assert.Equal(t, models.DateKey("14-03-2026"), got.Date)

	// The stored record holds ciphertext, not the content.
	rec, err := notes.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	assert.NotContains(t, rec.Ciphertext, "dentist")
	assert.True(t, rec.Dirty)
	assert.Equal(t, int64(1), rec.Revision)
}

func TestNoteRepository_RevisionBumpsOncePerDirtyPeriod(t *testing.T) {
	repo, notes, _, _ := newTestNoteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "14-03-2026", "v1"))
	require.NoError(t, repo.Save(ctx, "14-03-2026", "v2"))
	require.NoError(t, repo.Save(ctx, "14-03-2026", "v3"))

	rec, err := notes.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Revision)

	// After the backend acknowledges (dirty cleared), the next edit bumps.
	rec.Dirty = false
	require.NoError(t, notes.Save(ctx, rec))
	require.NoError(t, repo.Save(ctx, "14-03-2026", "v4"))

	rec, err = notes.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Revision)
	assert.True(t, rec.Dirty)
}

func TestNoteRepository_InvalidDate(t *testing.T) {
	repo, _, _, _ := newTestNoteRepo(t)

	err := repo.Save(context.Background(), "2026-03-14", "wrong format")
	require.Error(t, err)
}

func TestNoteRepository_EmptyContentDeletes(t *testing.T) {
	repo, notes, _, _ := newTestNoteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "14-03-2026", "text"))
	require.NoError(t, repo.Save(ctx, "14-03-2026", ""))

	// Never synced: physically gone.
	_, err := notes.Get(ctx, "14-03-2026")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNoteRepository_DeleteSyncedLeavesTombstone(t *testing.T) {
	repo, notes, _, _ := newTestNoteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "14-03-2026", "text"))

	rec, err := notes.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	rec.RemoteID = "rid-1"
	rec.Dirty = false
	require.NoError(t, notes.Save(ctx, rec))

	require.NoError(t, repo.Delete(ctx, "14-03-2026"))

	rec, err = notes.Get(ctx, "14-03-2026")
	require.NoError(t, err)
	assert.True(t, rec.Deleted)
	assert.True(t, rec.Dirty)
	assert.Equal(t, int64(2), rec.Revision)
	assert.Empty(t, rec.Ciphertext)

	// Reads treat the tombstone as absent.
	_, err = repo.Get(ctx, "14-03-2026")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNoteRepository_GetAllDatesSkipsTombstones(t *testing.T) {
	repo, notes, _, _ := newTestNoteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "01-01-2026", "a"))
	require.NoError(t, repo.Save(ctx, "02-01-2026", "b"))
	require.NoError(t, repo.Save(ctx, "03-01-2025", "older"))

	rec, err := notes.Get(ctx, "02-01-2026")
	require.NoError(t, err)
	rec.Deleted = true
	require.NoError(t, notes.Save(ctx, rec))

	dates, err := repo.GetAllDates(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.DateKey{"01-01-2026", "03-01-2025"}, dates)

	dates, err = repo.GetAllDatesForYear(ctx, 2026)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.DateKey{"01-01-2026"}, dates)
}

func TestNoteRepository_WrongKeySurfacesDecryptionError(t *testing.T) {
	cipher := crypto.NewCipher()
	keyA, err := cipher.GenerateVaultKey()
	require.NoError(t, err)
	keyB, err := cipher.GenerateVaultKey()
	require.NoError(t, err)

	notes := newMemNoteStore()
	clock := newVirtualClock()
	ctx := context.Background()

	writer := NewNoteRepository(cipher, keyA, notes, clock, logger.Nop())
	require.NoError(t, writer.Save(ctx, "14-03-2026", "secret"))

	reader := NewNoteRepository(cipher, keyB, notes, clock, logger.Nop())
	_, err = reader.Get(ctx, "14-03-2026")
	require.ErrorIs(t, err, ErrDecryption)
}
