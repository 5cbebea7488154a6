package ledgerstore

import (
	"context"

	"splitkeeper/internal/models"
)

// Currency fetches one currency by code, sql.ErrNoRows when absent.
func (s *Store) Currency(ctx context.Context, code string) (models.Currency, error) {
	var c models.Currency
	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name, rate_to_base, is_base FROM currencies WHERE code = ?", code).
		Scan(&c.ID, &c.Code, &c.Name, &c.RateToBase, &c.IsBase)
	return c, err
}

// BaseCurrency fetches the single currency flagged as base, sql.ErrNoRows
// when none is configured.
func (s *Store) BaseCurrency(ctx context.Context) (models.Currency, error) {
	var c models.Currency
	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name, rate_to_base, is_base FROM currencies WHERE is_base = TRUE").
		Scan(&c.ID, &c.Code, &c.Name, &c.RateToBase, &c.IsBase)
	return c, err
}
