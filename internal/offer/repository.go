package offer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offerhub/offerhub/internal/media"
)

// ErrNotFound is returned when no offer has the requested id.
var ErrNotFound = errors.New("offer not found")

// Repository persists offers.
type Repository interface {
	Create(ctx context.Context, o Offer) error
	Get(ctx context.Context, id string) (Offer, error)
	// Update writes only the listed fields of o, plus its UpdatedAt.
	Update(ctx context.Context, o Offer, changed []Field) error
	Delete(ctx context.Context, id string) error
	// Search returns the requested page and the unpaginated match count.
	Search(ctx context.Context, q SearchQuery) ([]Summary, int, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed offer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new offer.
func (r *PostgresRepository) Create(ctx context.Context, o Offer) error {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(o.Owner.ID)
	if err != nil {
		return err
	}
	details, err := json.Marshal(o.Details)
	if err != nil {
		return err
	}
	image, err := marshalImage(o.Image)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO offers (id, title, description, price, details, image, owner_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, o.Title, o.Description, o.Price, details, image, ownerID, o.CreatedAt.UTC(), o.UpdatedAt.UTC())
	return err
}

// Get fetches an offer with its owner's profile.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Offer, error) {
	offerID, err := uuid.Parse(id)
	if err != nil {
		return Offer{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT o.id, o.title, o.description, o.price, o.details, o.image, o.owner_id,
        COALESCE(a.username, ''), COALESCE(a.phone, ''), o.created_at, o.updated_at
        FROM offers o LEFT JOIN accounts a ON a.id = o.owner_id WHERE o.id = $1`, offerID)

	var (
		o        Offer
		oid      uuid.UUID
		ownerID  uuid.UUID
		details  []byte
		image    []byte
		created  time.Time
		modified time.Time
	)
	err = row.Scan(&oid, &o.Title, &o.Description, &o.Price, &details, &image, &ownerID,
		&o.Owner.Account.Username, &o.Owner.Account.Phone, &created, &modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offer{}, ErrNotFound
	}
	if err != nil {
		return Offer{}, err
	}
	if err := json.Unmarshal(details, &o.Details); err != nil {
		return Offer{}, err
	}
	if len(image) > 0 {
		o.Image = new(media.ImageRef)
		if err := json.Unmarshal(image, o.Image); err != nil {
			return Offer{}, err
		}
	}
	o.ID = oid.String()
	o.Owner.ID = ownerID.String()
	o.CreatedAt = created.UTC()
	o.UpdatedAt = modified.UTC()
	return o, nil
}

// Update writes the changed columns of o.
func (r *PostgresRepository) Update(ctx context.Context, o Offer, changed []Field) error {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return ErrNotFound
	}
	sets := make([]string, 0, len(changed)+1)
	args := make([]any, 0, len(changed)+2)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	for _, f := range changed {
		switch f {
		case FieldTitle:
			add("title", o.Title)
		case FieldDescription:
			add("description", o.Description)
		case FieldPrice:
			add("price", o.Price)
		case FieldDetails:
			details, err := json.Marshal(o.Details)
			if err != nil {
				return err
			}
			add("details", details)
		case FieldImage:
			image, err := marshalImage(o.Image)
			if err != nil {
				return err
			}
			add("image", image)
		default:
			return fmt.Errorf("unknown offer field %q", f)
		}
	}
	add("updated_at", o.UpdatedAt.UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE offers SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an offer.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	offerID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search runs the filtered count and the sorted, paged item query.
func (r *PostgresRepository) Search(ctx context.Context, q SearchQuery) ([]Summary, int, error) {
	where, args := searchWhere(q)

	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM offers o`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT o.id, o.title, o.price, o.owner_id, COALESCE(a.username, ''), COALESCE(a.phone, '')
        FROM offers o LEFT JOIN accounts a ON a.id = o.owner_id` + where + searchOrder(q)
	page, pageArgs := searchPage(q, len(args))
	query += page
	args = append(args, pageArgs...)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Summary, 0)
	for rows.Next() {
		var (
			s       Summary
			id      uuid.UUID
			ownerID uuid.UUID
		)
		if err := rows.Scan(&id, &s.Title, &s.Price, &ownerID, &s.Owner.Account.Username, &s.Owner.Account.Phone); err != nil {
			return nil, 0, err
		}
		s.ID = id.String()
		s.Owner.ID = ownerID.String()
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

// searchWhere builds the WHERE clause. Both price bounds become a single
// BETWEEN so the range is always applied as a whole.
func searchWhere(q SearchQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.Title != "" {
		args = append(args, "%"+escapeLike(q.Title)+"%")
		clauses = append(clauses, fmt.Sprintf("o.title ILIKE $%d", len(args)))
	}
	switch {
	case q.PriceMin != nil && q.PriceMax != nil:
		args = append(args, *q.PriceMin, *q.PriceMax)
		clauses = append(clauses, fmt.Sprintf("o.price BETWEEN $%d AND $%d", len(args)-1, len(args)))
	case q.PriceMin != nil:
		args = append(args, *q.PriceMin)
		clauses = append(clauses, fmt.Sprintf("o.price >= $%d", len(args)))
	case q.PriceMax != nil:
		args = append(args, *q.PriceMax)
		clauses = append(clauses, fmt.Sprintf("o.price <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// searchPage builds the LIMIT/OFFSET clause, numbering its placeholders
// after the n arguments already bound. An unbounded query gets no clause.
func searchPage(q SearchQuery, n int) (string, []any) {
	if q.Limit <= 0 {
		return "", nil
	}
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), []any{int64(q.Limit), int64(q.Offset())}
}

func searchOrder(q SearchQuery) string {
	switch q.Sort {
	case SortPriceAsc:
		return " ORDER BY o.price ASC, o.created_at, o.id"
	case SortPriceDesc:
		return " ORDER BY o.price DESC, o.created_at, o.id"
	default:
		return " ORDER BY o.created_at, o.id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func marshalImage(ref *media.ImageRef) ([]byte, error) {
	if ref == nil {
		return nil, nil
	}
	return json.Marshal(ref)
}
