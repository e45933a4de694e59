package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/db"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// List returns all actively tracked paths.
func List(ctx context.Context, database *sql.DB) (*ListOutput, error) {
	items, err := db.GetTrackedItems(ctx, database)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: items, Total: len(items)}, nil
}
