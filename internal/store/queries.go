package store

const (
	upsertNoteQuery = `INSERT INTO notes (date, remote_id, nonce, ciphertext, key_id, revision, updated_at, server_updated_at, deleted, dirty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (date) DO UPDATE SET
    remote_id = excluded.remote_id,
    nonce = excluded.nonce,
    ciphertext = excluded.ciphertext,
    key_id = excluded.key_id,
    revision = excluded.revision,
    updated_at = excluded.updated_at,
    server_updated_at = excluded.server_updated_at,
    deleted = excluded.deleted,
    dirty = excluded.dirty`

	selectNoteColumns = `SELECT date, remote_id, nonce, ciphertext, key_id, revision, updated_at, server_updated_at, deleted, dirty FROM notes`

	getNoteQuery         = selectNoteColumns + ` WHERE date = $1`
	getAllNotesQuery     = selectNoteColumns + ` ORDER BY date`
	getNotesForYearQuery = selectNoteColumns + ` WHERE date LIKE '%-' || $1 ORDER BY date`
	getDirtyNotesQuery   = selectNoteColumns + ` WHERE dirty = 1 ORDER BY date`
	deleteNoteQuery      = `DELETE FROM notes WHERE date = $1`

	upsertImageQuery = `INSERT INTO images (id, nonce, ciphertext) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET nonce = excluded.nonce, ciphertext = excluded.ciphertext`

	getImageQuery    = `SELECT id, nonce, ciphertext FROM images WHERE id = $1`
	deleteImageQuery = `DELETE FROM images WHERE id = $1`

	upsertImageMetaQuery = `INSERT INTO image_meta (id, note_date, type, filename, mime_type, width, height, size, sha256, key_id, pending_op, remote_path, server_updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    note_date = excluded.note_date,
    type = excluded.type,
    filename = excluded.filename,
    mime_type = excluded.mime_type,
    width = excluded.width,
    height = excluded.height,
    size = excluded.size,
    sha256 = excluded.sha256,
    key_id = excluded.key_id,
    pending_op = excluded.pending_op,
    remote_path = excluded.remote_path,
    server_updated_at = excluded.server_updated_at`

	selectImageMetaColumns = `SELECT id, note_date, type, filename, mime_type, width, height, size, sha256, key_id, pending_op, remote_path, server_updated_at FROM image_meta`

	getImageMetaQuery       = selectImageMetaColumns + ` WHERE id = $1`
	getAllImageMetaQuery    = selectImageMetaColumns + ` ORDER BY id`
	getImageMetaByDateQuery = selectImageMetaColumns + ` WHERE note_date = $1 ORDER BY id`
	deleteImageMetaQuery    = `DELETE FROM image_meta WHERE id = $1`

	getSyncStateQuery = `SELECT cursor FROM sync_state WHERE id = 1`
	setSyncStateQuery = `INSERT INTO sync_state (id, cursor) VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET cursor = excluded.cursor`

	getSettingQuery = `SELECT value FROM settings WHERE key = $1`
	setSettingQuery = `INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
)
