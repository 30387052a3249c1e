package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smuct-dev/studentbase-backend/internal/model"
)

// Sentinel errors surfaced to services and handlers.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateID     = errors.New("account with this ID already exists")
	ErrDuplicateEmail  = errors.New("account with this email already exists")
)

const accountColumns = `id, name, department, email, password_hash,
	COALESCE(attachment_path, ''), status, role, is_admin, created_at, updated_at`

// AccountRepository handles account data access on PostgreSQL.
// Uniqueness of id and email is enforced by database constraints, so a
// duplicate insert is a single atomic failure rather than a check-then-write
// race.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account by its primary key.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM students WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Department, &a.Email, &a.PasswordHash,
		&a.AttachmentPath, &a.Status, &a.Role, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByEmail retrieves an account by its unique email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM students WHERE email = $1`, email,
	).Scan(&a.ID, &a.Name, &a.Department, &a.Email, &a.PasswordHash,
		&a.AttachmentPath, &a.Status, &a.Role, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves accounts with pagination, optional name substring search,
// and optional department filter.
func (r *AccountRepository) List(ctx context.Context, name, department string, limit, offset int) ([]model.Account, int, error) {
	where := ``
	var args []interface{}
	argIdx := 1

	if name != "" {
		where = ` WHERE name ILIKE $` + strconv.Itoa(argIdx)
		args = append(args, "%"+name+"%")
		argIdx++
	}
	if department != "" {
		if where == "" {
			where = ` WHERE`
		} else {
			where += ` AND`
		}
		where += ` department = $` + strconv.Itoa(argIdx)
		args = append(args, department)
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + accountColumns + ` FROM students` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Department, &a.Email, &a.PasswordHash,
			&a.AttachmentPath, &a.Status, &a.Role, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

// Create inserts a new account. Duplicate id or email surfaces as a typed
// conflict error from the unique constraints.
func (r *AccountRepository) Create(ctx context.Context, a *model.Account) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (id, name, department, email, password_hash, status, role, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Department, a.Email, a.PasswordHash, a.Status, a.Role, a.IsAdmin,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// Update modifies an account's basic info (excluding password and privilege).
func (r *AccountRepository) Update(ctx context.Context, a *model.Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, department = $2, email = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		a.Name, a.Department, a.Email, a.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword replaces an account's password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateStatus patches an account's status.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateRole patches an account's role.
func (r *AccountRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET role = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		role, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateAttachmentPath records the stored path of a profile attachment.
func (r *AccountRepository) UpdateAttachmentPath(ctx context.Context, id, path string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET attachment_path = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		path, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetAdmin grants or revokes the admin privilege flag.
func (r *AccountRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET is_admin = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		isAdmin, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Delete removes an account by ID.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteMany removes a batch of accounts, returning the number deleted.
func (r *AccountRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// mapUniqueViolation translates a Postgres 23505 into the matching sentinel
// based on the violated constraint.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "students_pkey":
			return ErrDuplicateID
		case "students_email_key":
			return ErrDuplicateEmail
		default:
			return ErrDuplicateID
		}
	}
	return err
}
