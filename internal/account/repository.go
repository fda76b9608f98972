package account

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offerhub/offerhub/internal/media"
)

var (
	// ErrNotFound is returned when no account matches a lookup.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
)

const uniqueViolation = "23505"

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByToken(ctx context.Context, token string) (Account, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, email, username, phone, avatar, password_hash, password_salt, token, created_at FROM accounts`

// Create inserts a new account. A duplicate email surfaces as ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	id, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	var avatar []byte
	if acc.Avatar != nil {
		if avatar, err = json.Marshal(acc.Avatar); err != nil {
			return err
		}
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, email, username, phone, avatar, password_hash, password_salt, token, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, acc.Email, acc.Profile.Username, acc.Profile.Phone, avatar, acc.PasswordHash, acc.PasswordSalt, acc.Token, acc.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "accounts_email_key" {
		return ErrEmailTaken
	}
	return err
}

// FindByID fetches an account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return r.findOne(ctx, selectAccount+` WHERE id = $1`, accountID)
}

// FindByEmail fetches an account by exact email match.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.findOne(ctx, selectAccount+` WHERE email = $1`, email)
}

// FindByToken fetches the account owning a bearer token.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (Account, error) {
	return r.findOne(ctx, selectAccount+` WHERE token = $1`, token)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (Account, error) {
	row := r.db.QueryRow(ctx, query, arg)
	var (
		id        uuid.UUID
		avatar    []byte
		createdAt time.Time
		acc       Account
	)
	err := row.Scan(&id, &acc.Email, &acc.Profile.Username, &acc.Profile.Phone, &avatar,
		&acc.PasswordHash, &acc.PasswordSalt, &acc.Token, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	if len(avatar) > 0 {
		acc.Avatar = new(media.ImageRef)
		if err := json.Unmarshal(avatar, acc.Avatar); err != nil {
			return Account{}, err
		}
	}
	acc.ID = id.String()
	acc.CreatedAt = createdAt.UTC()
	return acc, nil
}
