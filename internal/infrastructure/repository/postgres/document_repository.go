package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/infrastructure/resilience"
)

type DocumentRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithExecutor routes catalog reads through retry and circuit breaking.
func (r *DocumentRepository) WithExecutor(executor *resilience.Executor) *DocumentRepository {
	r.executor = executor
	return r
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user_status ON documents(user_id, status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, filename, mime_type, status, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

// ListCatalog returns the user's documents in a given status, oldest first.
// Matching is first-wins over this order, so it must be stable.
func (r *DocumentRepository) ListCatalog(ctx context.Context, userID string, status domain.DocumentStatus) ([]domain.Document, error) {
	var out []domain.Document
	call := func(callCtx context.Context) error {
		docs, err := r.listCatalog(callCtx, userID, status)
		if err != nil {
			return err
		}
		out = docs
		return nil
	}

	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, "postgres.list_catalog", call, classifyPostgresError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded(err)
	}
	return out, nil
}

func (r *DocumentRepository) listCatalog(ctx context.Context, userID string, status domain.DocumentStatus) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, filename, mime_type, status, created_at, updated_at
FROM documents
WHERE user_id = $1 AND status = $2
ORDER BY created_at ASC, id ASC
`, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return out, nil
}

type documentScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row documentScanner) (domain.Document, error) {
	var doc domain.Document
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.MimeType,
		&status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Status = domain.DocumentStatus(status)
	return doc, nil
}

func classifyPostgresError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func wrapTemporaryIfNeeded(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	class := classifyPostgresError(err)
	if class.Retryable {
		return domain.WrapError(domain.ErrTemporary, "postgres list catalog", err)
	}
	return err
}
