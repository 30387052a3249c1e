package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smuct-dev/studentbase-backend/internal/config"
	"github.com/smuct-dev/studentbase-backend/internal/model"
	"github.com/smuct-dev/studentbase-backend/internal/response"
)

// AccountStore is the persistence contract the service depends on.
// *repository.AccountRepository is the production implementation; tests use
// an in-memory fake.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	List(ctx context.Context, name, department string, limit, offset int) ([]model.Account, int, error)
	Create(ctx context.Context, a *model.Account) error
	Update(ctx context.Context, a *model.Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	UpdateAttachmentPath(ctx context.Context, id, path string) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// AccountService handles account business logic: registration, CRUD,
// credential lifecycle, the profile read-through cache, and the change feed.
// rdb may be nil, in which case caching and event publishing are skipped.
type AccountService struct {
	store AccountStore
	auth  *AuthService
	rdb   *redis.Client
	cfg   *config.Config
	log   zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, auth *AuthService, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AccountService {
	return &AccountService{store: store, auth: auth, rdb: rdb, cfg: cfg, log: log}
}

// Register creates a self-registered account. The account is always an
// active, non-admin student regardless of anything else the caller sent;
// admin status is granted only through Promote or the bootstrap CLI.
func (s *AccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           req.ID,
		Name:         req.Name,
		Department:   req.Department,
		Email:        req.Email,
		PasswordHash: hash,
		Status:       model.StatusActive,
		Role:         model.RoleStudent,
		IsAdmin:      false,
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.publish(ctx, "create", account.ID)
	return account, nil
}

// CreateAccount is the admin-facing create with explicit role and status.
// Even here IsAdmin stays false; the role field carries no privilege.
func (s *AccountService) CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusActive
	}
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}

	account := &model.Account{
		ID:           req.ID,
		Name:         req.Name,
		Department:   req.Department,
		Email:        req.Email,
		PasswordHash: hash,
		Status:       status,
		Role:         role,
		IsAdmin:      false,
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.publish(ctx, "create", account.ID)
	return account, nil
}

// GetByEmail retrieves an account by email. Used by login; never cached so
// the stored password hash is always fresh.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.store.GetByEmail(ctx, email)
}

// GetByID retrieves an account by ID through the Redis read-through cache.
// Cached entries are credential-free projections; the password hash never
// enters Redis.
func (s *AccountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, account)
	return account, nil
}

// List retrieves accounts with pagination, optional name substring search,
// and optional department filter.
func (s *AccountService) List(ctx context.Context, name, department string, page, perPage int) ([]model.Account, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	accounts, total, err := s.store.List(ctx, name, department, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if accounts == nil {
		accounts = []model.Account{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return accounts, pagination, nil
}

// Update modifies name/department/email. The password hash is replaced only
// when a new plaintext password is supplied; otherwise it is not touched, so
// an unchanged record is never re-hashed.
func (s *AccountService) Update(ctx context.Context, id string, req *model.UpdateAccountRequest) (*model.Account, error) {
	account := &model.Account{
		ID:         id,
		Name:       req.Name,
		Department: req.Department,
		Email:      req.Email,
	}
	if err := s.store.Update(ctx, account); err != nil {
		return nil, err
	}

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, id)
	s.publish(ctx, "update", id)
	return s.store.GetByID(ctx, id)
}

// UpdateStatus patches an account's status.
func (s *AccountService) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "status", id)
	return nil
}

// UpdateRole patches an account's role.
func (s *AccountService) UpdateRole(ctx context.Context, id string, role model.Role) error {
	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "role", id)
	return nil
}

// Promote grants the admin privilege flag to an account.
func (s *AccountService) Promote(ctx context.Context, id string) error {
	if err := s.store.SetAdmin(ctx, id, true); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "promote", id)
	return nil
}

// SetAttachment records the stored path of an uploaded profile attachment.
func (s *AccountService) SetAttachment(ctx context.Context, id, path string) error {
	if err := s.store.UpdateAttachmentPath(ctx, id, path); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "attachment", id)
	return nil
}

// Delete removes an account. Deletion is physical; there is no soft delete.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "delete", id)
	return nil
}

// DeleteMany removes a batch of accounts, returning the number deleted.
func (s *AccountService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	n, err := s.store.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	s.publish(ctx, "delete", "")
	return n, nil
}

func (s *AccountService) cacheGet(ctx context.Context, id string) *model.Account {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.AccountProfileKey(id)).Result()
	if err != nil {
		return nil
	}
	var a model.Account
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil
	}
	return &a
}

func (s *AccountService) cacheSet(ctx context.Context, a *model.Account) {
	if s.rdb == nil {
		return
	}
	// Account marshals without the password hash (json:"-").
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AccountProfileKey(a.ID), raw, s.cfg.ProfileCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("account_id", a.ID).Msg("Profile cache write failed")
	}
}

func (s *AccountService) invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.AccountProfileKey(id)).Err(); err != nil {
		s.log.Warn().Err(err).Str("account_id", id).Msg("Profile cache invalidation failed")
	}
}

func (s *AccountService) publish(ctx context.Context, op, id string) {
	if s.rdb == nil {
		return
	}
	event := model.ChangeEvent{Op: op, AccountID: id, At: time.Now().UTC()}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.AccountChangesChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("Change event publish failed")
	}
}
