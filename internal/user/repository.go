package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique indexes backing the case-insensitive uniqueness of username and email.
const (
	usernameUniqueIndex = "users_username_lower_idx"
	emailUniqueIndex    = "users_email_lower_idx"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	// FindByFilter returns one page of users matching f. Users reached through
	// several joined rows appear once, in the items and in the total.
	FindByFilter(ctx context.Context, f Filter, page PageRequest) (*PageResult, error)
	// Create assigns the ID and CreatedAt of u. It returns ErrDuplicateUsername
	// or ErrDuplicateEmail when a uniqueness constraint rejects the row.
	Create(ctx context.Context, u *User) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	AddRole(ctx context.Context, userID string, role RoleBrief) error
	RemoveRole(ctx context.Context, userID string, roleID string) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

// GetByID returns ErrNotFound for ids that are not UUIDs instead of letting
// Postgres reject the cast.
func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

func (r *pgxUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, squirrel.Expr("lower(u.username) = lower(?)", username))
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, squirrel.Expr("lower(u.email) = lower(?)", email))
}

func (r *pgxUserRepository) getOne(ctx context.Context, cond squirrel.Sqlizer) (*User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(userColumns...).
		From("public.users u").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) FindAll(ctx context.Context) ([]*User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(userColumns...).
		From("public.users u").
		OrderBy("u.created_at ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find all users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find all users failed: %w", err)
	}
	return collectUsers(rows)
}

func (r *pgxUserRepository) FindByFilter(ctx context.Context, f Filter, page PageRequest) (*PageResult, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	// The total is a separate query so it stays correct for pages past the end.
	countSQL, countArgs, err := buildCountQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build count users query failed: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users failed: %w", err)
	}

	res := &PageResult{
		Items:     []*User{},
		Total:     total,
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
	}
	if page.Offset() >= total {
		return res, nil
	}

	pageSQL, pageArgs, err := buildPageQuery(f, page)
	if err != nil {
		return nil, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	res.Items, err = collectUsers(rows)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.users").
		Columns("username", "email", "password_hash", "status").
		Values(u.Username, u.Email, u.PasswordHash, string(u.Status)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		if dupErr := uniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	return nil
}

func (r *pgxUserRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.users").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) AddRole(ctx context.Context, userID string, role RoleBrief) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.user_roles").
		Columns("user_id", "role_id").
		Values(userID, role.ID).
		Suffix("ON CONFLICT (user_id, role_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add user role query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("add user role failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) RemoveRole(ctx context.Context, userID string, roleID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove user role query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("remove user role failed: %w", err)
	}
	return nil
}

// uniqueViolation maps a unique-index violation on users to the matching
// duplicate error. It returns nil for any other error.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameUniqueIndex:
		return ErrDuplicateUsername
	case emailUniqueIndex:
		return ErrDuplicateEmail
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var status string
	var rolesJSON []byte

	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&status,
		&u.CreatedAt,
		&rolesJSON,
	); err != nil {
		return nil, err
	}
	u.Status = Status(status)

	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &u.Roles); err != nil {
			log.Printf("warning: failed to unmarshal roles for user %s: %v", u.ID, err)
		}
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*User, error) {
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users failed: %w", err)
	}
	return users, nil
}
