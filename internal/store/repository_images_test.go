package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondratev/daynotes/models"
)

var imageMetaColumns = []string{
	"id", "note_date", "type", "filename", "mime_type", "width", "height",
	"size", "sha256", "key_id", "pending_op", "remote_path", "server_updated_at",
}

func TestImageStore_SaveImage_Transactional(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewImageStore(db)

	rec := models.ImageRecord{ID: "img-1", Nonce: "bm9uY2U=", Ciphertext: []byte{1, 2, 3}}
	meta := models.ImageMeta{
		ID:        "img-1",
		NoteDate:  "14-03-2026",
		Type:      models.ImageBackground,
		MimeType:  "image/png",
		Size:      3,
		SHA256:    "deadbeef",
		PendingOp: models.PendingUpload,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertImageQuery)).
		WithArgs("img-1", "bm9uY2U=", []byte{1, 2, 3}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertImageMetaQuery)).
		WithArgs("img-1", "14-03-2026", "background", "", "image/png",
			0, 0, int64(3), "deadbeef", "", "upload", "", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveImage(context.Background(), rec, meta))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageStore_SaveImage_RollsBackOnMetaError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewImageStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertImageQuery)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertImageMetaQuery)).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.SaveImage(context.Background(),
		models.ImageRecord{ID: "img-1"}, models.ImageMeta{ID: "img-1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageStore_GetMeta_RoundTrip(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewImageStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(getImageMetaQuery)).
		WithArgs("img-2").
		WillReturnRows(sqlmock.NewRows(imageMetaColumns).AddRow(
			"img-2", "01-01-2026", "inline", "photo.jpg", "image/jpeg",
			640, 480, int64(1024), "cafe", "kid", "", "acc/01-01-2026/img-2.enc", nil,
		))

	meta, err := repo.GetMeta(context.Background(), "img-2")
	require.NoError(t, err)
	assert.Equal(t, models.ImageInline, meta.Type)
	assert.Equal(t, models.DateKey("01-01-2026"), meta.NoteDate)
	assert.Equal(t, models.PendingNone, meta.PendingOp)
	assert.Equal(t, "acc/01-01-2026/img-2.enc", meta.RemotePath)
	assert.Nil(t, meta.ServerUpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageStore_GetImage_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewImageStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(getImageQuery)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetImage(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageStore_DeleteImageAndMeta(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewImageStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteImageQuery)).
		WithArgs("img-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteImageMetaQuery)).
		WithArgs("img-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteImageAndMeta(context.Background(), "img-3"))
	require.NoError(t, mock.ExpectationsWereMet())
}
