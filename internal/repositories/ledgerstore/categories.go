package ledgerstore

import (
	"context"
)

// ChildCategoryIDs returns the ids of a category's direct children. One
// level only; budget scoping never goes deeper.
func (s *Store) ChildCategoryIDs(ctx context.Context, categoryID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM categories WHERE parent_id = ?", categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
