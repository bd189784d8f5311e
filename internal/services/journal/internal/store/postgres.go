package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
	"github.com/lib/pq"
)

const (
	errUniqueViolation     pq.ErrorCode = "23505"
	errForeignKeyViolation pq.ErrorCode = "23503"
)

const entryColumns = "id, uid, entry_date, content, mood, created_at, updated_at"

const imageColumns = "id, entry_id, file_path, caption, created_at"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func (cfg PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB)
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db dbtx
}

// NewPostgresDB opens and pings a PostgreSQL connection pool.
func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var (
		e  model.Entry
		md sql.NullString
	)
	err := row.Scan(&e.ID, &e.UID, &e.Date, &e.Content, &md, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, ErrNotFound
		}
		return e, err
	}

	e.Mood = mood.Mood(md.String)
	return e, nil
}

func scanImage(row rowScanner) (model.Image, error) {
	var img model.Image
	err := row.Scan(&img.ID, &img.EntryID, &img.FilePath, &img.Caption, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return img, ErrNotFound
		}
		return img, err
	}
	return img, nil
}

func nullMood(m mood.Mood) sql.NullString {
	return sql.NullString{String: string(m), Valid: m != ""}
}

// UpsertEntry inserts the entry for (uid, date) or overwrites its content and mood.
func (s *PostgresStore) UpsertEntry(ctx context.Context, r UpsertEntryRequest) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO journal_entries (uid, entry_date, content, mood)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (uid, entry_date) DO UPDATE
		 SET content = EXCLUDED.content, mood = EXCLUDED.mood, updated_at = NOW()
		 RETURNING `+entryColumns,
		r.UID, r.Date, r.Content, nullMood(r.Mood))

	e, err := scanEntry(row)
	if err != nil {
		return e, fmt.Errorf("upsert entry: %w", err)
	}
	return e, nil
}

// CreateDraft inserts an empty entry for (uid, date) unless one exists, and returns
// whichever row is stored. The no-op update makes RETURNING yield the existing row.
func (s *PostgresStore) CreateDraft(ctx context.Context, r CreateDraftRequest) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO journal_entries (uid, entry_date)
		 VALUES ($1, $2)
		 ON CONFLICT (uid, entry_date) DO UPDATE SET uid = EXCLUDED.uid
		 RETURNING `+entryColumns,
		r.UID, r.Date)

	e, err := scanEntry(row)
	if err != nil {
		return e, fmt.Errorf("create draft: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) UpdateEntry(ctx context.Context, r UpdateEntryRequest) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE journal_entries
		 SET content = $3, mood = $4, updated_at = NOW()
		 WHERE id = $1 AND uid = $2
		 RETURNING `+entryColumns,
		r.ID, r.UID, r.Content, nullMood(r.Mood))

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e, ErrNotFound
		}
		return e, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEntryByDate(ctx context.Context, r GetEntryByDateRequest) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE uid = $1 AND entry_date = $2",
		r.UID, r.Date)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e, ErrNotFound
		}
		return e, fmt.Errorf("get entry by date: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEntryByID(ctx context.Context, r GetEntryByIDRequest) (model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE id = $1 AND uid = $2",
		r.ID, r.UID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e, ErrNotFound
		}
		return e, fmt.Errorf("get entry by id: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEntryOwner(ctx context.Context, entryID int64) (string, error) {
	var uid string
	err := s.db.QueryRowContext(ctx, "SELECT uid FROM journal_entries WHERE id = $1", entryID).Scan(&uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get entry owner: %w", err)
	}
	return uid, nil
}

// LockEntry holds a row lock on the entry until the surrounding transaction ends.
func (s *PostgresStore) LockEntry(ctx context.Context, entryID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM journal_entries WHERE id = $1 FOR UPDATE", entryID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock entry: %w", err)
	}
	return nil
}

// ListEntries returns matching entries newest first, without tags.
func (s *PostgresStore) ListEntries(ctx context.Context, r ListEntriesRequest) ([]model.Entry, error) {
	var (
		where = []string{"e.uid = $1"}
		args  = []any{r.UID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if r.Mood != "" {
		where = append(where, "e.mood = "+arg(string(r.Mood)))
	}
	if r.Query != "" {
		where = append(where, "e.content ILIKE "+arg("%"+escapeLike(r.Query)+"%"))
	}
	if !r.From.IsZero() {
		where = append(where, "e.entry_date >= "+arg(r.From))
	}
	if !r.To.IsZero() {
		where = append(where, "e.entry_date <= "+arg(r.To))
	}
	if r.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM tags t WHERE t.entry_id = e.id AND t.name = "+arg(r.Tag)+")")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.uid, e.entry_date, e.content, e.mood, e.created_at, e.updated_at
		 FROM journal_entries AS e
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY e.entry_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *PostgresStore) GetEntryFacts(ctx context.Context, r GetEntryFactsRequest) ([]model.EntryFacts, error) {
	query := `SELECT entry_date, COALESCE(mood, ''), char_length(content)
		FROM journal_entries
		WHERE uid = $1
		  AND ($2::date IS NULL OR entry_date >= $2::date)
		  AND ($3::date IS NULL OR entry_date <= $3::date)
		ORDER BY entry_date`

	rows, err := s.db.QueryContext(ctx, query, r.UID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("get entry facts: %w", err)
	}
	defer rows.Close()

	var out []model.EntryFacts
	for rows.Next() {
		var (
			f  model.EntryFacts
			md string
		)
		if err := rows.Scan(&f.Date, &md, &f.Length); err != nil {
			return nil, fmt.Errorf("scan entry facts: %w", err)
		}
		f.Mood = mood.Mood(md)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get entry facts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateTag(ctx context.Context, r CreateTagRequest) (model.Tag, error) {
	tag := model.Tag{EntryID: r.EntryID, Name: r.Name}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO tags (entry_id, name) VALUES ($1, $2) RETURNING id, created_at",
		r.EntryID, r.Name).Scan(&tag.ID, &tag.CreatedAt)
	if err != nil {
		if isPqErr(err, errForeignKeyViolation) {
			return tag, ErrNotFound
		}
		return tag, fmt.Errorf("insert tag: %w", err)
	}
	return tag, nil
}

// ListTags returns the tags of every entry in r.EntryIDs ordered by entry, then id.
func (s *PostgresStore) ListTags(ctx context.Context, r ListTagsRequest) ([]model.Tag, error) {
	if len(r.EntryIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, entry_id, name, created_at FROM tags WHERE entry_id = ANY($1) ORDER BY entry_id, id",
		pq.Array(r.EntryIDs))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.EntryID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteTag(ctx context.Context, r DeleteTagRequest) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1 AND entry_id = $2", r.TagID, r.EntryID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateImage(ctx context.Context, r CreateImageRequest) (model.Image, error) {
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO images (entry_id, file_path, caption) VALUES ($1, $2, $3) RETURNING "+imageColumns,
		r.EntryID, r.FilePath, r.Caption)

	img, err := scanImage(row)
	if err != nil {
		if isPqErr(err, errForeignKeyViolation) {
			return img, ErrNotFound
		}
		return img, fmt.Errorf("insert image: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) ListImages(ctx context.Context, r ListImagesRequest) ([]model.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE entry_id = $1 ORDER BY created_at, id", r.EntryID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var out []model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return out, nil
}

// DeleteImage removes the image if its entry belongs to r.UID and returns the deleted row.
func (s *PostgresStore) DeleteImage(ctx context.Context, r DeleteImageRequest) (model.Image, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM images AS i
		 USING journal_entries AS e
		 WHERE i.id = $1 AND i.entry_id = e.id AND e.uid = $2
		 RETURNING i.id, i.entry_id, i.file_path, i.caption, i.created_at`,
		r.ImageID, r.UID)

	img, err := scanImage(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return img, ErrNotFound
		}
		return img, fmt.Errorf("delete image: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) UpdateImageCaption(ctx context.Context, r UpdateImageCaptionRequest) (model.Image, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE images AS i
		 SET caption = $3
		 FROM journal_entries AS e
		 WHERE i.id = $1 AND i.entry_id = e.id AND e.uid = $2
		 RETURNING i.id, i.entry_id, i.file_path, i.caption, i.created_at`,
		r.ImageID, r.UID, r.Caption)

	img, err := scanImage(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return img, ErrNotFound
		}
		return img, fmt.Errorf("update image caption: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, r CreateUserRequest) (model.User, error) {
	u := model.User{UID: r.UID, Email: r.Email, Name: r.Name, PasswordHash: r.PasswordHash}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (uid, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		r.UID, r.Email, r.Name, r.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return u, ErrExists
		}
		return u, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		"SELECT uid, email, name, password_hash, created_at, updated_at FROM users WHERE email = $1",
		email).Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, ErrNotFound
		}
		return u, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// WithTx runs fn inside a transaction. Nested calls are rejected.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return errors.New("already in transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &PostgresStore{db: tx}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return nil
	}
	return db.PingContext(ctx)
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == code
}
