package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

var _ model.CredentialVault = (*CredentialRepository)(nil)

const credentialColumns = `id, rp_id, user_handle, user_name, user_display_name, private_key, sign_count, created_at, last_used_at`

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func (r *CredentialRepository) Create(ctx context.Context, cred model.StoredCredential) error {
	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		cred.ID, cred.RelyingPartyID, cred.UserHandle, cred.UserName, cred.UserDisplayName,
		cred.PrivateKey, int64(cred.SignCount), toMillis(cred.CreatedAt), nullMillis(cred.LastUsedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrInvalidState
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id []byte) (model.StoredCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ?`

	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.StoredCredential{}, model.ErrNotFound
		}
		return model.StoredCredential{}, fmt.Errorf("failed to get credential by id: %w", err)
	}

	return cred, nil
}

func (r *CredentialRepository) ListByRelyingParty(ctx context.Context, rpID string) ([]model.StoredCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials
			  WHERE rp_id = ? ORDER BY created_at, user_name`

	rows, err := r.db.QueryContext(ctx, query, rpID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.StoredCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}

	return creds, nil
}

// IncrementSignCount bumps the signature counter and returns the new value.
func (r *CredentialRepository) IncrementSignCount(ctx context.Context, id []byte, usedAt time.Time) (uint32, error) {
	query := `UPDATE credentials SET sign_count = sign_count + 1, last_used_at = ?
			  WHERE id = ? RETURNING sign_count`

	var count int64
	err := r.db.QueryRowContext(ctx, query, toMillis(usedAt), id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment sign count: %w", err)
	}

	return uint32(count), nil
}

func (r *CredentialRepository) Delete(ctx context.Context, id []byte) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (model.StoredCredential, error) {
	var (
		cred      model.StoredCredential
		signCount int64
		createdAt int64
		lastUsed  sql.NullInt64
	)

	err := s.Scan(
		&cred.ID, &cred.RelyingPartyID, &cred.UserHandle, &cred.UserName, &cred.UserDisplayName,
		&cred.PrivateKey, &signCount, &createdAt, &lastUsed,
	)
	if err != nil {
		return model.StoredCredential{}, err
	}

	cred.SignCount = uint32(signCount)
	cred.CreatedAt = fromMillis(createdAt)
	if lastUsed.Valid {
		t := fromMillis(lastUsed.Int64)
		cred.LastUsedAt = &t
	}

	return cred, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
