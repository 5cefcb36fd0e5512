package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"

	"github.com/Masterminds/squirrel"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"dealership_api/internal/domain"
)

// Store keeps every collection in one table of JSON documents.
type Store struct{ db *sql.DB }

// Open connects, pings and creates the documents table when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", classify(err))
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create documents table: %w", classify(err))
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, c domain.Collection, d domain.Document) (domain.Document, error) {
	saved := d.Clone()
	saved[domain.IDField] = uuid.NewString()
	raw, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", c, domain.ErrInternal)
	}
	if _, err := s.db.ExecContext(ctx, insertDocSQL, string(c), saved.ID(), string(raw)); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, classify(err))
	}
	return saved, nil
}

func (s *Store) InsertMany(ctx context.Context, c domain.Collection, ds []domain.Document) (int, error) {
	if len(ds) == 0 {
		return 0, nil
	}
	q := builder.Insert("documents").Columns("collection", "id", "doc")
	for _, d := range ds {
		saved := d.Clone()
		saved[domain.IDField] = uuid.NewString()
		raw, err := json.Marshal(saved)
		if err != nil {
			return 0, fmt.Errorf("encode %s document: %w", c, domain.ErrInternal)
		}
		q = q.Values(string(c), saved.ID(), string(raw))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert %s: %v: %w", c, err, domain.ErrInternal)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert many %s: %w", c, classify(err))
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) DeleteAll(ctx context.Context, c domain.Collection) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteCollectionSQL, string(c))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", c, classify(err))
	}
	return res.RowsAffected()
}

var fieldName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// findQuery builds the SELECT for Find. Field names are restricted so they
// can be spliced into a JSON path.
func findQuery(c domain.Collection, f domain.Filter) (string, []any, error) {
	q := builder.Select("doc").
		From("documents").
		Where(squirrel.Eq{"collection": string(c)}).
		OrderBy("seq") // insertion order, like a collection scan
	for k, v := range f {
		if !fieldName.MatchString(k) {
			return "", nil, fmt.Errorf("filter field %q: %w", k, domain.ErrInternal)
		}
		path := `$."` + k + `"`
		q = q.Where(stringTypeTerm, path).Where(valueTerm, path, v)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build find %s: %v: %w", c, err, domain.ErrInternal)
	}
	return query, args, nil
}

func (s *Store) Find(ctx context.Context, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	query, args, err := findQuery(c, f)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c, classify(err))
	}
	defer rows.Close()

	out := []domain.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, classify(err))
		}
		var d domain.Document
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s document: %v: %w", c, err, domain.ErrInternal)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", c, classify(err))
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, c domain.Collection, id string) (domain.Document, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, findDocByIDSQL, string(c), id).Scan(&raw); err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c, id, classify(err))
	}
	var d domain.Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode %s document: %v: %w", c, err, domain.ErrInternal)
	}
	return d, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx))
}

func (s *Store) Close(ctx context.Context) error { return s.db.Close() }

func classify(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return fmt.Errorf("%v: %w", err, domain.ErrNotFound)
	}
	var netErr net.Error
	var myErr *mysqldrv.MySQLError
	switch {
	case errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysqldrv.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr),
		err.Error() == "sql: database is closed":
		return fmt.Errorf("%v: %w", err, domain.ErrStorageUnavailable)
	case errors.As(err, &myErr):
		return fmt.Errorf("mysql %d: %w", myErr.Number, domain.ErrInternal)
	default:
		return fmt.Errorf("%v: %w", err, domain.ErrInternal)
	}
}
