package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Save(ctx context.Context, record *model.QuoteRecord) error {
	query := `
        INSERT INTO quotes (id, order_id, total_amount, explanation, created_at)
        VALUES (:id, :order_id, :total_amount, :explanation, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, record)
	return err
}

func (r *PGRepository) Search(ctx context.Context, terms []string, limit int) ([]model.QuoteRecord, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	for i, term := range terms {
		param := fmt.Sprintf("term_%d", i)
		conditions = append(conditions, fmt.Sprintf("LOWER(explanation) LIKE :%s", param))
		args[param] = "%" + strings.ToLower(term) + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT id, order_id, total_amount, explanation, created_at FROM quotes" +
		whereClause + " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var records []model.QuoteRecord
	err = nstmt.SelectContext(ctx, &records, args)
	return records, err
}
