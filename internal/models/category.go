package models

// Category is a spending category. The parent/child relation is one level
// deep: budgets that include subcategories only ever look at a category's
// direct children, never deeper.
type Category struct {
	ID       int    `json:"id,omitempty" db:"id,omitempty"`
	Name     string `json:"name" db:"name"`
	ParentID *int   `json:"parent_id,omitempty" db:"parent_id,omitempty"`
}
