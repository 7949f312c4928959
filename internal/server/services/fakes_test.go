package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fastHashing swaps argon2 for a reversible stand-in.
func fastHashing(t *testing.T) {
	t.Helper()
	origHash, origVerify := hashPassword, verifyPassword
	hashPassword = func(p string) (string, error) { return "hashed:" + p, nil }
	verifyPassword = func(encoded, p string) bool { return encoded == "hashed:"+p }
	t.Cleanup(func() {
		hashPassword, verifyPassword = origHash, origVerify
	})
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
	err    error
}

func newFakeUsersRepo(seed ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[int64]*models.User{}}
	for _, u := range seed {
		cp := *u
		r.byID[u.ID] = &cp
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUsersRepo) conflict(u *models.User, skip int64) error {
	for id, other := range r.byID {
		if id == skip {
			continue
		}
		if other.UserName == u.UserName {
			return &common.ConflictError{Field: "username"}
		}
		if other.Email == u.Email {
			return &common.ConflictError{Field: "email"}
		}
	}
	return nil
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if err := r.conflict(u, 0); err != nil {
		return nil, err
	}
	r.nextID++
	u.ID = r.nextID
	u.DateJoined = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.UserName == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUsersRepo) Update(ctx context.Context, id int64, p models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	next := *u
	if p.UserName != nil {
		next.UserName = *p.UserName
	}
	if p.Email != nil {
		next.Email = *p.Email
	}
	if p.PasswordHash != nil {
		next.PasswordHash = *p.PasswordHash
	}
	if err := r.conflict(&next, id); err != nil {
		return nil, err
	}
	r.byID[id] = &next
	cp := next
	return &cp, nil
}

func (r *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

// --- entries ---

type fakeEntriesRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*models.Entry
	filters []entries.ListFilter
	err     error
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{byID: map[int64]*models.Entry{}}
}

func (r *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	cp := *e
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEntriesRepo) Get(ctx context.Context, id int64) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEntriesRepo) List(ctx context.Context, f entries.ListFilter) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Entry, 0)
	for _, e := range r.byID {
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEntriesRepo) Update(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	r.byID[e.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEntriesRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeEntriesRepo) ToggleFavorite(ctx context.Context, id int64) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	e.Favorite = !e.Favorite
	cp := *e
	return &cp, nil
}

func (r *fakeEntriesRepo) SetAttachmentKey(ctx context.Context, id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.AttachmentKey = key
	return nil
}

// --- events ---

type fakeEventsRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Event
	err    error
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{byID: map[int64]*models.Event{}}
}

func (r *fakeEventsRepo) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	cp := *e
	cp.ID = r.nextID
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEventsRepo) Get(ctx context.Context, id int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventsRepo) List(ctx context.Context, f events.ListFilter) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Event, 0, len(r.byID))
	for _, e := range r.byID {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeEventsRepo) Update(ctx context.Context, e *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	r.byID[e.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeEventsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	en *fakeEntriesRepo
	ev *fakeEventsRepo
}

func newFakeRepoManager(seed ...*models.User) *fakeRepoManager {
	return &fakeRepoManager{
		u:  newFakeUsersRepo(seed...),
		en: newFakeEntriesRepo(),
		ev: newFakeEventsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) SchemaVersion(context.Context, *sql.DB) (int64, error) {
	return 0, nil
}
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository     { return m.u }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository { return m.en }
func (m *fakeRepoManager) Events(db dbx.DBTX) events.Repository   { return m.ev }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	return nil
}
