package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/munderdifflin/fulfillment-service/internal/model"
)

// PGRepository reads catalog columns off the inventory table; catalog data
// and ledger stock share one row per item.
type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	var it model.Item
	query := `SELECT item_id, category, unit_price, unit_cost, min_reorder_qty FROM inventory WHERE item_id = $1`
	err := r.DB.GetContext(ctx, &it, query, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *PGRepository) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	query := `SELECT item_id, category, unit_price, unit_cost, min_reorder_qty FROM inventory ORDER BY item_id`
	err := r.DB.SelectContext(ctx, &items, query)
	return items, err
}
