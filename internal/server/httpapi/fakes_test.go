package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/entries"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/events"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
	"github.com/dmitrijs2005/lifestyle/internal/server/session"
)

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// fakeVerifier accepts "token-<id>" for users 1 and 2.
type fakeVerifier struct{}

func (fakeVerifier) UserIDFromAccess(token string) (int64, error) {
	switch token {
	case "token-1":
		return 1, nil
	case "token-2":
		return 2, nil
	}
	return 0, common.ErrInvalidToken
}

type fakeSessions struct {
	mu           sync.Mutex
	loginErr     error
	refreshErr   error
	gotUsername  string
	gotPassword  string
	gotRefresh   string
	gotLogoutID  int64
	gotLogoutCkt string
}

func (f *fakeSessions) CookieName() string { return common.RefreshTokenCookieName }

func (f *fakeSessions) Login(_ context.Context, username, password string) (*session.LoginResult, *http.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUsername, f.gotPassword = username, password
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &session.LoginResult{Message: session.MsgLoginSuccessful, UserID: 1, AccessToken: "token-1"},
		&http.Cookie{Name: common.RefreshTokenCookieName, Value: "refresh-1", Path: "/api", HttpOnly: true, MaxAge: 86400},
		nil
}

func (f *fakeSessions) Refresh(_ context.Context, cookieValue string) (*session.RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotRefresh = cookieValue
	if cookieValue == "" {
		return nil, common.ErrRefreshTokenMissing
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &session.RefreshResult{Access: "token-1", UserID: 1}, nil
}

func (f *fakeSessions) Logout(_ context.Context, userID int64, cookieValue string) (*session.LogoutResult, *http.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotLogoutID, f.gotLogoutCkt = userID, cookieValue
	return &session.LogoutResult{Message: session.MsgLogoutSuccessful},
		&http.Cookie{Name: common.RefreshTokenCookieName, Path: "/api", MaxAge: -1, Expires: time.Unix(0, 0)},
		nil
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	nextID    int64
	changeErr error
	gotChange services.ChangePasswordInput
	gotCaller int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users: map[int64]*models.User{
			1: {ID: 1, UserName: "alice", Email: "alice@x.com", PasswordHash: "secret-hash"},
			2: {ID: 2, UserName: "bob", Email: "bob@x.com", PasswordHash: "secret-hash"},
		},
		nextID: 3,
	}
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == in.Username {
			return nil, common.NewValidationError("username", services.MsgUsernameTaken)
		}
	}
	u := &models.User{ID: f.nextID, UserName: in.Username, Email: in.Email, PasswordHash: "hashed"}
	f.users[u.ID] = u
	f.nextID++
	return u, nil
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) Patch(_ context.Context, id int64, in services.PatchInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Username != nil {
		u.UserName = *in.Username
	}
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) ChangePassword(_ context.Context, userID int64, in services.ChangePasswordInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotCaller, f.gotChange = userID, in
	return f.changeErr
}

type fakeEntries struct {
	mu          sync.Mutex
	entries     map[int64]*models.Entry
	gotFilter   entries.ListFilter
	gotCaller   int64
	gotInput    services.EntryInput
	gotPartial  bool
	attachments map[int64]string
}

func newFakeEntries() *fakeEntries {
	return &fakeEntries{
		entries: map[int64]*models.Entry{
			1: {ID: 1, Title: "first", Body: "hello", Author: 1, CreatedAt: fixedTime},
		},
		attachments: map[int64]string{},
	}
}

func (f *fakeEntries) Create(_ context.Context, callerID int64, in services.EntryInput) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotCaller, f.gotInput = callerID, in
	if in.Title == nil || *in.Title == "" {
		return nil, common.NewValidationError("title", "This field is required.")
	}
	e := &models.Entry{ID: 2, Title: *in.Title, Author: callerID, CreatedAt: fixedTime}
	if in.Body != nil {
		e.Body = *in.Body
	}
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakeEntries) Get(_ context.Context, id int64) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEntries) List(_ context.Context, filter entries.ListFilter) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotFilter = filter
	return []*models.Entry{f.entries[1]}, nil
}

func (f *fakeEntries) Update(_ context.Context, id int64, in services.EntryInput, partial bool) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotInput, f.gotPartial = in, partial
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if in.Title != nil {
		e.Title = *in.Title
	}
	return e, nil
}

func (f *fakeEntries) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntries) ToggleFavorite(_ context.Context, id int64) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	e.Favorite = !e.Favorite
	return e, nil
}

func (f *fakeEntries) CreateAttachment(_ context.Context, id int64) (*services.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	e.AttachmentKey = "entries/2024/05/06/abc"
	return &services.Attachment{Key: e.AttachmentKey, UploadURL: "https://s3.local/put"}, nil
}

func (f *fakeEntries) AttachmentURL(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	if e.AttachmentKey == "" {
		return "", &common.NotFoundError{Detail: services.MsgNoAttachment}
	}
	return "https://s3.local/get", nil
}

type fakeEvents struct {
	mu         sync.Mutex
	gotFilter  events.ListFilter
	gotInput   services.EventInput
	gotPartial bool
}

func (f *fakeEvents) event(id int64, in services.EventInput, author int64) *models.Event {
	e := &models.Event{ID: id, Title: "standup", StartTime: fixedTime, EndTime: fixedTime.Add(time.Hour), Author: author}
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.StartTime != nil {
		e.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		e.EndTime = *in.EndTime
	}
	e.Description = in.Description
	return e
}

func (f *fakeEvents) Create(_ context.Context, callerID int64, in services.EventInput) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotInput = in
	return f.event(5, in, callerID), nil
}

func (f *fakeEvents) Get(_ context.Context, id int64) (*models.Event, error) {
	if id != 5 {
		return nil, common.ErrorNotFound
	}
	return f.event(5, services.EventInput{}, 1), nil
}

func (f *fakeEvents) List(_ context.Context, filter events.ListFilter) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotFilter = filter
	return nil, nil
}

func (f *fakeEvents) Update(_ context.Context, id int64, in services.EventInput, partial bool) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotInput, f.gotPartial = in, partial
	if id != 5 {
		return nil, common.ErrorNotFound
	}
	return f.event(id, in, 1), nil
}

func (f *fakeEvents) Delete(_ context.Context, id int64) error {
	if id != 5 {
		return common.ErrorNotFound
	}
	return nil
}
