package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smuct-dev/studentbase-backend/internal/config"
	"github.com/smuct-dev/studentbase-backend/internal/handler"
	"github.com/smuct-dev/studentbase-backend/internal/model"
	"github.com/smuct-dev/studentbase-backend/internal/repository"
	"github.com/smuct-dev/studentbase-backend/internal/response"
	"github.com/smuct-dev/studentbase-backend/internal/router"
	"github.com/smuct-dev/studentbase-backend/internal/service"
	"github.com/smuct-dev/studentbase-backend/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore is an in-memory, mutex-guarded service.AccountStore.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*model.Account)}
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeStore) List(_ context.Context, name, department string, limit, offset int) ([]model.Account, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Account
	for _, a := range f.accounts {
		if department != "" && a.Department != department {
			continue
		}
		all = append(all, *a)
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[a.ID]; ok {
		return repository.ErrDuplicateID
	}
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.accounts[a.ID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	for id, other := range f.accounts {
		if id != a.ID && other.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	existing.Name = a.Name
	existing.Department = a.Department
	existing.Email = a.Email
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return f.patch(id, func(a *model.Account) { a.PasswordHash = passwordHash })
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, status model.Status) error {
	return f.patch(id, func(a *model.Account) { a.Status = status })
}

func (f *fakeStore) UpdateRole(_ context.Context, id string, role model.Role) error {
	return f.patch(id, func(a *model.Account) { a.Role = role })
}

func (f *fakeStore) UpdateAttachmentPath(_ context.Context, id, path string) error {
	return f.patch(id, func(a *model.Account) { a.AttachmentPath = path })
}

func (f *fakeStore) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	return f.patch(id, func(a *model.Account) { a.IsAdmin = isAdmin })
}

func (f *fakeStore) patch(id string, fn func(*model.Account)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) DeleteMany(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.accounts[id]; ok {
			delete(f.accounts, id)
			n++
		}
	}
	return n, nil
}

// testEnv wires the full router over a fakeStore.
type testEnv struct {
	router  *gin.Engine
	store   *fakeStore
	auth    *service.AuthService
	account *service.AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:        gin.TestMode,
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     bcrypt.MinCost,
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 5 * 1024 * 1024,
	}

	store := newFakeStore()
	authService := service.NewAuthService(cfg)
	accountService := service.NewAccountService(store, authService, nil, cfg, zerolog.Nop())
	mediaService := service.NewMediaService(cfg)

	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, accountService),
		Account: handler.NewAccountHandler(accountService, mediaService),
	}

	return &testEnv{
		router:  router.SetupRouter(authService, handlers, cfg),
		store:   store,
		auth:    authService,
		account: accountService,
	}
}

// seedAdmin registers an admin account directly and returns its token.
func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := e.auth.HashPassword("adminpw")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	admin := &model.Account{
		ID: "ADM1", Name: "Admin", Department: "IT", Email: "admin@x.com",
		PasswordHash: hash, Status: model.StatusActive, Role: model.RoleAdmin, IsAdmin: true,
	}
	if err := e.store.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin error: %v", err)
	}
	token, err := e.auth.GenerateToken(admin)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doMultipart(t *testing.T, path, token, fieldContentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="upload.bin"`)
	partHeader.Set("Content-Type", fieldContentType)
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// containsPasswordField reports whether a JSON body leaks a password or
// password hash key.
func containsPasswordField(body []byte) bool {
	return bytes.Contains(body, []byte(`"password`))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return &env
}
