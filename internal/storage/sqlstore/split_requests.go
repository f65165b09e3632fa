package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

// CreateSplitRequest persists a request and its participants atomically.
func (s *Store) CreateSplitRequest(ctx context.Context, req *models.SplitRequest) error {
	return s.withTx(ctx, func(c conn) error {
		var groupID any
		if req.GroupID != "" {
			groupID = req.GroupID
		}
		_, err := c.exec(ctx,
			`INSERT INTO split_requests (id, requester_id, group_id, description, amount, split_method,
			 status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.RequesterID, groupID, req.Description, req.Amount.MinorUnits(),
			string(req.SplitMethod), string(req.Status), req.CreatedAt, req.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split request: %w", err)
		}

		for i, p := range req.Participants {
			_, err := c.exec(ctx,
				`INSERT INTO split_participants (split_request_id, user_id, position, amount_owed, amount_paid,
				 status, paid_at, reminder_sent_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				req.ID, p.UserID, i, p.AmountOwed.MinorUnits(), p.AmountPaid.MinorUnits(),
				string(p.Status), nullInt(p.PaidAt), nullInt(p.ReminderSentAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
		return nil
	})
}

// GetSplitRequest retrieves a request with its participants in creation order.
func (s *Store) GetSplitRequest(ctx context.Context, requestID string) (*models.SplitRequest, error) {
	return getSplitRequest(ctx, s.conn(), requestID)
}

func getSplitRequest(ctx context.Context, c conn, requestID string) (*models.SplitRequest, error) {
	req := &models.SplitRequest{}
	var groupID sql.NullString
	var amount int64
	var method, status string
	err := c.queryRow(ctx,
		`SELECT id, requester_id, group_id, description, amount, split_method, status, created_at, updated_at
		 FROM split_requests WHERE id = ?`,
		requestID,
	).Scan(&req.ID, &req.RequesterID, &groupID, &req.Description, &amount, &method, &status, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split request %s: %w", requestID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split request: %w", err)
	}
	req.GroupID = groupID.String
	req.Amount = money.FromMinor(amount)
	req.SplitMethod = models.SplitMethod(method)
	req.Status = models.SplitRequestStatus(status)

	rows, err := c.query(ctx,
		`SELECT user_id, amount_owed, amount_paid, status, paid_at, reminder_sent_at
		 FROM split_participants WHERE split_request_id = ? ORDER BY position`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := models.SplitParticipant{SplitRequestID: requestID}
		var owed, paid int64
		var pStatus string
		var paidAt, remindedAt sql.NullInt64
		if err := rows.Scan(&p.UserID, &owed, &paid, &pStatus, &paidAt, &remindedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.AmountOwed = money.FromMinor(owed)
		p.AmountPaid = money.FromMinor(paid)
		p.Status = models.ParticipantStatus(pStatus)
		p.PaidAt = intOrZero(paidAt)
		p.ReminderSentAt = intOrZero(remindedAt)
		req.Participants = append(req.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return req, nil
}

// ListSplitRequestsForUser returns requests the user created or owes on, newest first.
func (s *Store) ListSplitRequestsForUser(ctx context.Context, userID string) ([]*models.SplitRequest, error) {
	c := s.conn()
	ids, err := queryIDs(ctx, c,
		`SELECT DISTINCT r.id, r.created_at FROM split_requests r
		 LEFT JOIN split_participants p ON p.split_request_id = r.id
		 WHERE r.requester_id = ? OR p.user_id = ?
		 ORDER BY r.created_at DESC, r.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list split requests: %w", err)
	}

	reqs := make([]*models.SplitRequest, 0, len(ids))
	for _, id := range ids {
		req, err := getSplitRequest(ctx, c, id)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// ListOpenSplitRequestIDs returns the IDs of every request that is not cancelled.
func (s *Store) ListOpenSplitRequestIDs(ctx context.Context) ([]string, error) {
	ids, err := queryIDs(ctx, s.conn(),
		"SELECT id, created_at FROM split_requests WHERE status <> ? ORDER BY created_at, id",
		string(models.SplitRequestCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list open split requests: %w", err)
	}
	return ids, nil
}

// queryIDs collects the first column of an (id, created_at) result set.
func queryIDs(ctx context.Context, c conn, query string, args ...any) ([]string, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var createdAt int64
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DueReminders returns pending participants of open requests not reminded since cutoff.
func (s *Store) DueReminders(ctx context.Context, cutoff int64) ([]models.ReminderTarget, error) {
	rows, err := s.conn().query(ctx,
		`SELECT p.split_request_id, r.requester_id, r.group_id, r.description, p.user_id, p.amount_owed, p.reminder_sent_at
		 FROM split_participants p
		 JOIN split_requests r ON r.id = p.split_request_id
		 WHERE p.status = ? AND r.status IN (?, ?)
		   AND (p.reminder_sent_at IS NULL OR p.reminder_sent_at <= ?)
		 ORDER BY r.created_at, p.split_request_id, p.position`,
		string(models.ParticipantPending),
		string(models.SplitRequestPending), string(models.SplitRequestPartiallyPaid),
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	defer rows.Close()

	var targets []models.ReminderTarget
	for rows.Next() {
		var t models.ReminderTarget
		var groupID sql.NullString
		var owed int64
		var remindedAt sql.NullInt64
		if err := rows.Scan(&t.SplitRequestID, &t.RequesterID, &groupID, &t.Description, &t.UserID, &owed, &remindedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		t.GroupID = groupID.String
		t.AmountOwed = money.FromMinor(owed)
		t.ReminderSentAt = intOrZero(remindedAt)
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder targets: %w", err)
	}
	return targets, nil
}

// MarkReminded stamps a participant's last reminder time.
func (s *Store) MarkReminded(ctx context.Context, requestID, userID string, at int64) error {
	res, err := s.conn().exec(ctx,
		"UPDATE split_participants SET reminder_sent_at = ? WHERE split_request_id = ? AND user_id = ?",
		at, requestID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reminder update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %s of %s: %w", userID, requestID, models.ErrNotFound)
	}
	return nil
}

// splitRequestTx implements storage.SplitRequestTx for one locked request.
type splitRequestTx struct {
	c         conn
	requestID string
}

func (t *splitRequestTx) SplitRequest(ctx context.Context) (*models.SplitRequest, error) {
	return getSplitRequest(ctx, t.c, t.requestID)
}

// UpdateParticipant writes the payment fields only. reminder_sent_at belongs
// to MarkReminded, which runs outside the request lock.
func (t *splitRequestTx) UpdateParticipant(ctx context.Context, p *models.SplitParticipant) error {
	res, err := t.c.exec(ctx,
		`UPDATE split_participants SET amount_paid = ?, status = ?, paid_at = ?
		 WHERE split_request_id = ? AND user_id = ?`,
		p.AmountPaid.MinorUnits(), string(p.Status), nullInt(p.PaidAt),
		t.requestID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check participant update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %s: %w", p.UserID, models.ErrNotFound)
	}
	return nil
}

func (t *splitRequestTx) UpdateStatus(ctx context.Context, status models.SplitRequestStatus, updatedAt int64) error {
	_, err := t.c.exec(ctx,
		"UPDATE split_requests SET status = ?, updated_at = ? WHERE id = ?",
		string(status), updatedAt, t.requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split request status: %w", err)
	}
	return nil
}
