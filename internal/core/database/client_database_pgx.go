package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Specta/internal/config"
	"github.com/markdave123-py/Specta/internal/core"
	"github.com/markdave123-py/Specta/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Ensure bootstrap once
	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends CA verification params when a certificate path is configured.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, nullTime(user.CreatedAt), nullTime(user.UpdatedAt))
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for Document

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, file_name, storage_url, source_type, content_type, status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()), COALESCE($9, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.FileName, doc.StorageURL, doc.SourceType, doc.ContentType, doc.Status,
		nullTime(doc.CreatedAt), nullTime(doc.UpdatedAt))
	return err
}

const documentColumns = `id, user_id, file_name, storage_url, source_type, content_type, status, model_id, page_count, created_at, updated_at`

func scanDocument(s interface{ Scan(...any) error }, d *models.Document) error {
	return s.Scan(
		&d.ID, &d.UserID, &d.FileName, &d.StorageURL, &d.SourceType, &d.ContentType, &d.Status,
		&d.ModelID, &d.PageCount, &d.CreatedAt, &d.UpdatedAt,
	)
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var d models.Document
	err := scanDocument(c.db.QueryRowContext(ctx, q, id), &d)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	return c.execOne(ctx, q, id, id, status)
}

func (c *DatabaseClient) SetDocumentModel(ctx context.Context, id string, modelID string, pageCount int) error {
	const q = `
		UPDATE documents
		SET model_id = $2, page_count = $3, updated_at = now()
		WHERE id = $1
	`
	return c.execOne(ctx, q, id, id, modelID, pageCount)
}

func (c *DatabaseClient) execOne(ctx context.Context, q string, id string, args ...any) error {
	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Implementing the db interface for spec records

// InsertSpecRecords inserts records in a single transaction.
func (c *DatabaseClient) InsertSpecRecords(ctx context.Context, records []models.SpecRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO spec_records
			(id, document_id, source_document, model_id, parameter, raw_value, unit, source_page, position,
			 shape, value_num, tolerance, min_value, max_value, comparison, value_text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, COALESCE($18, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.DocumentID, r.SourceDocument, r.ModelID, r.Parameter, r.RawValue, r.Unit, r.SourcePage, r.Position,
			r.Shape, r.Value, r.Tolerance, r.Min, r.Max, r.Comparison, r.ValueText, embeddingArg(r.Embedding),
			nullTime(r.CreatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert record %d: %w", r.Position, err)
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) DeleteSpecRecords(ctx context.Context, documentID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM spec_records WHERE document_id = $1`, documentID)
	return err
}

const recordColumns = `r.id, r.document_id, r.source_document, r.model_id, r.parameter, r.raw_value, r.unit,
	r.source_page, r.position, r.shape, r.value_num, r.tolerance, r.min_value, r.max_value,
	r.comparison, r.value_text, r.created_at`

func (c *DatabaseClient) GetRecordsByDocument(ctx context.Context, documentID string) ([]models.SpecRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM spec_records r
		WHERE r.document_id = $1
		ORDER BY r.position ASC`
	return c.queryRecords(ctx, q, documentID)
}

func (c *DatabaseClient) ListRecordsByParameter(ctx context.Context, userID, parameter string) ([]models.SpecRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM spec_records r
		JOIN documents d ON d.id = r.document_id
		WHERE d.user_id = $1 AND r.parameter = $2
		ORDER BY d.created_at DESC, r.position ASC`
	return c.queryRecords(ctx, q, userID, parameter)
}

// SearchRecords finds the top-k records whose parameter embedding is closest to queryVec.
func (c *DatabaseClient) SearchRecords(ctx context.Context, userID string, queryVec []float32, limit int) ([]models.SpecRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM spec_records r
		JOIN documents d ON d.id = r.document_id
		WHERE d.user_id = $1 AND r.embedding IS NOT NULL
		ORDER BY r.embedding <-> $2
		LIMIT $3`
	return c.queryRecords(ctx, q, userID, pgvector.NewVector(queryVec), limit)
}

func (c *DatabaseClient) queryRecords(ctx context.Context, q string, args ...any) ([]models.SpecRecord, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SpecRecord
	for rows.Next() {
		var r models.SpecRecord
		if err := rows.Scan(
			&r.ID, &r.DocumentID, &r.SourceDocument, &r.ModelID, &r.Parameter, &r.RawValue, &r.Unit,
			&r.SourcePage, &r.Position, &r.Shape, &r.Value, &r.Tolerance, &r.Min, &r.Max,
			&r.Comparison, &r.ValueText, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// embeddingArg stores NULL for records that were never embedded.
func embeddingArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
