package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mkondratev/daynotes/internal/adapter"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/models"
)

// virtualClock drives debounce timers deterministically in tests.
type virtualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*virtualTimer
}

type virtualTimer struct {
	clock   *virtualClock
	when    time.Time
	fn      func()
	stopped bool
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &virtualTimer{clock: c, when: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves virtual time forward and fires due timers synchronously.
func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*virtualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.when.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (t *virtualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (t *virtualTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = false
	t.when = t.clock.now.Add(d)
	return wasActive
}

// ── in-memory stores ────────────────────────────────────────────────────────

type memNoteStore struct {
	mu    sync.Mutex
	notes map[models.DateKey]models.LocalNoteRecord
}

func newMemNoteStore() *memNoteStore {
	return &memNoteStore{notes: make(map[models.DateKey]models.LocalNoteRecord)}
}

func (s *memNoteStore) Save(_ context.Context, rec models.LocalNoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[rec.Date] = rec
	return nil
}

func (s *memNoteStore) Get(_ context.Context, date models.DateKey) (models.LocalNoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.notes[date]
	if !ok {
		return models.LocalNoteRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *memNoteStore) GetAll(_ context.Context) ([]models.LocalNoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]models.LocalNoteRecord, 0, len(s.notes))
	for _, rec := range s.notes {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *memNoteStore) GetAllForYear(ctx context.Context, year int) ([]models.LocalNoteRecord, error) {
	all, _ := s.GetAll(ctx)
	var recs []models.LocalNoteRecord
	for _, rec := range all {
		if rec.Date.Year() == year {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s *memNoteStore) GetDirty(ctx context.Context) ([]models.LocalNoteRecord, error) {
	all, _ := s.GetAll(ctx)
	var recs []models.LocalNoteRecord
	for _, rec := range all {
		if rec.Dirty {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s *memNoteStore) Delete(_ context.Context, date models.DateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, date)
	return nil
}

type memImageStore struct {
	mu    sync.Mutex
	blobs map[string]models.ImageRecord
	metas map[string]models.ImageMeta
}

func newMemImageStore() *memImageStore {
	return &memImageStore{
		blobs: make(map[string]models.ImageRecord),
		metas: make(map[string]models.ImageMeta),
	}
}

func (s *memImageStore) SaveImage(_ context.Context, rec models.ImageRecord, meta models.ImageMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[rec.ID] = rec
	s.metas[meta.ID] = meta
	return nil
}

func (s *memImageStore) GetImage(_ context.Context, id string) (models.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.blobs[id]
	if !ok {
		return models.ImageRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *memImageStore) SaveMeta(_ context.Context, meta models.ImageMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metas[meta.ID] = meta
	return nil
}

func (s *memImageStore) GetMeta(_ context.Context, id string) (models.ImageMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[id]
	if !ok {
		return models.ImageMeta{}, store.ErrNotFound
	}
	return meta, nil
}

func (s *memImageStore) GetAllMeta(_ context.Context) ([]models.ImageMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metas := make([]models.ImageMeta, 0, len(s.metas))
	for _, m := range s.metas {
		metas = append(metas, m)
	}
	return metas, nil
}

func (s *memImageStore) GetMetaByNoteDate(ctx context.Context, date models.DateKey) ([]models.ImageMeta, error) {
	all, _ := s.GetAllMeta(ctx)
	var metas []models.ImageMeta
	for _, m := range all {
		if m.NoteDate == date {
			metas = append(metas, m)
		}
	}
	return metas, nil
}

func (s *memImageStore) DeleteImage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	return nil
}

func (s *memImageStore) DeleteImageAndMeta(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	delete(s.metas, id)
	return nil
}

type memSyncStateStore struct {
	mu    sync.Mutex
	state models.SyncState
}

func (s *memSyncStateStore) GetSyncState(context.Context) (models.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *memSyncStateStore) SetSyncState(_ context.Context, state models.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

type memSettingsStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{values: make(map[string]string)}
}

func (s *memSettingsStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *memSettingsStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// ── fake backend ────────────────────────────────────────────────────────────

// fakeServer emulates the backend's revision-guarded upsert: a write is
// accepted only when the expected revision matches the stored one (0 for a
// note the backend has never seen).
type fakeServer struct {
	mu      sync.Mutex
	pingErr error

	notes      map[models.DateKey]models.RemoteNote
	nextID     int
	upserts    int
	feed       []models.RemoteNote
	feedCursor string

	uploadedImages  map[string][]byte
	deletedImages   []string
	omitStoragePath bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		notes:          make(map[models.DateKey]models.RemoteNote),
		uploadedImages: make(map[string][]byte),
	}
}

func (f *fakeServer) SetToken(string) {}
func (f *fakeServer) Token() string   { return "token" }
func (f *fakeServer) AccountID() string {
	return "acc-test"
}

func (f *fakeServer) Register(context.Context, string, string) error { return nil }
func (f *fakeServer) Login(context.Context, string, string) error    { return nil }

func (f *fakeServer) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeServer) GetAccountKeys(context.Context) (models.AccountKeys, error) {
	return models.AccountKeys{}, adapter.ErrNotFound
}

func (f *fakeServer) PutAccountKeys(context.Context, models.AccountKeys) error { return nil }

func (f *fakeServer) GetNotesIndex(_ context.Context, year int) ([]models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var notes []models.RemoteNote
	for _, n := range f.notes {
		if n.Date.Year() == year {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (f *fakeServer) GetNote(_ context.Context, date models.DateKey) (models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[date]
	if !ok {
		return models.RemoteNote{}, adapter.ErrNotFound
	}
	return n, nil
}

func (f *fakeServer) GetNotesSince(context.Context, *string) ([]models.RemoteNote, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feed, f.feedCursor, nil
}

func (f *fakeServer) UpsertNote(_ context.Context, note models.RemoteNote, expectedRevision int64) (models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	current, exists := f.notes[note.Date]
	currentRev := int64(0)
	if exists {
		currentRev = current.Revision
	}
	if currentRev != expectedRevision {
		return models.RemoteNote{}, adapter.ErrRevisionConflict
	}

	if note.ID == "" {
		f.nextID++
		note.ID = "rid-" + strconv.Itoa(f.nextID)
	}
	now := time.Now().UTC()
	note.ServerUpdatedAt = &now
	f.notes[note.Date] = note
	return note, nil
}

func (f *fakeServer) UploadImage(_ context.Context, img models.RemoteImage, ciphertext []byte) (models.RemoteImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadedImages[img.ID] = ciphertext
	if !f.omitStoragePath {
		img.StoragePath = "acc-test/" + string(img.NoteDate) + "/" + img.ID + ".enc"
	}
	now := time.Now().UTC()
	img.ServerUpdatedAt = &now
	return img, nil
}

func (f *fakeServer) DeleteImage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploadedImages[id]; !ok {
		return adapter.ErrNotFound
	}
	delete(f.uploadedImages, id)
	f.deletedImages = append(f.deletedImages, id)
	return nil
}

func (f *fakeServer) GetImage(context.Context, string) (models.RemoteImage, []byte, error) {
	return models.RemoteImage{}, nil, adapter.ErrNotFound
}

func (f *fakeServer) GetImagesForNote(context.Context, models.DateKey) ([]models.RemoteImage, error) {
	return nil, nil
}

// fakeLegacySource yields a fixed set of plaintext notes.
type fakeLegacySource struct {
	notes []models.Note
	err   error
}

func (f *fakeLegacySource) Notes(context.Context) ([]models.Note, error) {
	return f.notes, f.err
}
