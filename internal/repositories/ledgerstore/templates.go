package ledgerstore

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"splitkeeper/internal/models"
	"splitkeeper/internal/services"
	"splitkeeper/pkg/utils"
)

const templateColumns = `id, owner_id, description, amount, original_amount, currency_code, category_id,
	group_id, split_method, split_participants, split_details, split_value, frequency,
	start_date, end_date, last_materialized, active, created_at`

func scanTemplate(row rowScanner) (models.RecurringTemplate, error) {
	var (
		t                models.RecurringTemplate
		participantsRaw  []byte
		detailsRaw       []byte
		splitValue       decimal.NullDecimal
		groupID          sql.NullInt64
		endDate          sql.NullTime
		lastMaterialized sql.NullTime
		createdAt        sql.NullTime
	)

	err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Amount, &t.OriginalAmount, &t.CurrencyCode,
		&t.CategoryID, &groupID, &t.SplitMethod, &participantsRaw, &detailsRaw, &splitValue,
		&t.Frequency, &t.StartDate, &endDate, &lastMaterialized, &t.Active, &createdAt)
	if err != nil {
		return models.RecurringTemplate{}, err
	}

	if t.SplitParticipants, err = unmarshalParticipants(participantsRaw); err != nil {
		return models.RecurringTemplate{}, utils.ErrorHandler(err, "corrupt split participants on template "+strconv.Itoa(t.ID))
	}
	if t.SplitDetails, err = models.ParseSplitDetails(detailsRaw); err != nil {
		return models.RecurringTemplate{}, utils.ErrorHandler(err, "corrupt split details on template "+strconv.Itoa(t.ID))
	}
	t.SplitValue = decimalPtr(splitValue)
	t.GroupID = intPtr(groupID)
	t.EndDate = timePtr(endDate)
	t.LastMaterialized = timePtr(lastMaterialized)
	t.CreatedAt = createdAtString(createdAt)
	return t, nil
}

func (s *Store) queryTemplates(ctx context.Context, query string, args ...interface{}) ([]models.RecurringTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// ActiveTemplates returns every active template across all users, for the
// materializer scan.
func (s *Store) ActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error) {
	return s.queryTemplates(ctx, `SELECT `+templateColumns+` FROM recurring_templates
		WHERE active = TRUE ORDER BY id ASC`)
}

// TemplatesForUser returns the user's templates, active or not.
func (s *Store) TemplatesForUser(ctx context.Context, userID int) ([]models.RecurringTemplate, error) {
	return s.queryTemplates(ctx, `SELECT `+templateColumns+` FROM recurring_templates
		WHERE owner_id = ? ORDER BY id ASC`, userID)
}

// TemplateByID fetches one template, sql.ErrNoRows when absent.
func (s *Store) TemplateByID(ctx context.Context, id int) (models.RecurringTemplate, error) {
	return scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id))
}

// InsertTemplate writes one template and fills in its generated id.
func (s *Store) InsertTemplate(ctx context.Context, t *models.RecurringTemplate) error {
	participantsRaw, err := marshalParticipants(t.SplitParticipants)
	if err != nil {
		return utils.ErrorHandler(err, "failed to encode split participants")
	}
	detailsRaw, err := marshalDetails(t.SplitDetails)
	if err != nil {
		return utils.ErrorHandler(err, "failed to encode split details")
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO recurring_templates
		(owner_id, description, amount, original_amount, currency_code, category_id, group_id,
		split_method, split_participants, split_details, split_value, frequency,
		start_date, end_date, last_materialized, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		t.OwnerID, t.Description, t.Amount, t.OriginalAmount, t.CurrencyCode, t.CategoryID,
		nullInt(t.GroupID), t.SplitMethod, participantsRaw, detailsRaw, nullDecimal(t.SplitValue),
		t.Frequency, t.StartDate, nullTime(t.EndDate), t.Active,
		time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		return utils.ErrorHandler(err, "failed to insert recurring template")
	}
	id, _ := res.LastInsertId()
	t.ID = int(id)
	return nil
}

// SetTemplateActive flips a template on or off. Returns sql.ErrNoRows when
// the template does not exist.
func (s *Store) SetTemplateActive(ctx context.Context, id int, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE recurring_templates SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return utils.ErrorHandler(err, "failed to toggle recurring template")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MaterializeTemplate advances last_materialized to today and inserts the
// generated expense in one transaction. The conditional update is the
// serialization point: whichever scan claims the date first wins, any other
// writer gets ErrAlreadyMaterialized and writes nothing.
func (s *Store) MaterializeTemplate(ctx context.Context, templateID int, expense *models.Expense, today time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.ErrorHandler(err, "failed to start materialization transaction")
	}

	res, err := tx.ExecContext(ctx, `UPDATE recurring_templates SET last_materialized = ?
		WHERE id = ? AND (last_materialized IS NULL OR last_materialized < ?)`,
		today, templateID, today)
	if err != nil {
		tx.Rollback()
		return utils.ErrorHandler(err, "failed to claim template for materialization")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback()
		return services.ErrAlreadyMaterialized
	}

	args, err := insertExpenseArgs(expense)
	if err != nil {
		tx.Rollback()
		return utils.ErrorHandler(err, "failed to encode materialized expense")
	}
	insertRes, err := tx.ExecContext(ctx, insertExpenseSQL, args...)
	if err != nil {
		tx.Rollback()
		return utils.ErrorHandler(err, "failed to insert materialized expense")
	}

	if err := tx.Commit(); err != nil {
		return utils.ErrorHandler(err, "failed to commit materialization")
	}
	id, _ := insertRes.LastInsertId()
	expense.ID = int(id)
	return nil
}
