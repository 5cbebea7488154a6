package ledgerstore

import (
	"context"
	"database/sql"
	"time"

	"splitkeeper/internal/models"
	"splitkeeper/pkg/utils"
)

const settlementColumns = `id, payer_id, receiver_id, amount, date, description, reference, created_at`

func scanSettlement(row rowScanner) (models.Settlement, error) {
	var (
		st        models.Settlement
		createdAt sql.NullTime
	)
	err := row.Scan(&st.ID, &st.PayerID, &st.ReceiverID, &st.Amount, &st.Date,
		&st.Description, &st.Reference, &createdAt)
	if err != nil {
		return models.Settlement{}, err
	}
	st.CreatedAt = createdAtString(createdAt)
	return st, nil
}

// SettlementsInvolving returns every settlement the user paid or received.
func (s *Store) SettlementsInvolving(ctx context.Context, userID int) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE payer_id = ? OR receiver_id = ?
		ORDER BY date ASC, id ASC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

// SettlementByID fetches one settlement, sql.ErrNoRows when absent.
func (s *Store) SettlementByID(ctx context.Context, id int) (models.Settlement, error) {
	return scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, id))
}

// InsertSettlement writes one settlement and fills in its generated id.
func (s *Store) InsertSettlement(ctx context.Context, st *models.Settlement) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO settlements
		(payer_id, receiver_id, amount, date, description, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.PayerID, st.ReceiverID, st.Amount, st.Date, st.Description, st.Reference,
		time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		return utils.ErrorHandler(err, "failed to insert settlement")
	}
	id, _ := res.LastInsertId()
	st.ID = int(id)
	return nil
}

// DeleteSettlement removes one settlement. Returns sql.ErrNoRows when
// nothing was deleted.
func (s *Store) DeleteSettlement(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", id)
	if err != nil {
		return utils.ErrorHandler(err, "failed to delete settlement")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
