// ABOUTME: Database operations for leads
// ABOUTME: Minimal create/get/list used by follow-up notes and the agenda view
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadflow/models"
)

const leadColumns = `id, user_id, name, email, company, created_at, updated_at`

// CreateLead inserts a lead, assigning an id and timestamps when missing.
func (s *Store) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO leads (id, user_id, name, email, company, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), lead.ID.String(), lead.UserID, lead.Name, nullString(lead.Email), nullString(lead.Company), lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetLead returns a lead by id or ErrLeadNotFound. Callers check UserID.
func (s *Store) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = ?
	`), id)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads returns the user's leads ordered by name.
func (s *Store) ListLeads(ctx context.Context, userID string, limit int) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+leadColumns+`
		FROM leads
		WHERE user_id = ?
		ORDER BY name
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*models.Lead, error) {
	var lead models.Lead
	var idStr string
	var email, company sql.NullString

	if err := row.Scan(&idStr, &lead.UserID, &lead.Name, &email, &company, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lead ID: %w", err)
	}
	lead.ID = id
	lead.Email = email.String
	lead.Company = company.String
	return &lead, nil
}
