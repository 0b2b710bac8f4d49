package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/quotes"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/munderdifflin/fulfillment-service/pkg/search"
	"go.uber.org/zap"
)

const quotesIndex = "quotes"

type quotesUseCase struct {
	repo   quotes.Repository
	es     *search.Client // optional; search falls back to the repository
	logger logger.ZapLogger
}

func NewQuotesUseCase(repo quotes.Repository, es *search.Client, log logger.ZapLogger) quotes.UseCase {
	return &quotesUseCase{
		repo:   repo,
		es:     es,
		logger: log,
	}
}

func (uc *quotesUseCase) Record(ctx context.Context, record *model.QuoteRecord) error {
	if err := uc.repo.Save(ctx, record); err != nil {
		return err
	}

	go uc.syncToElastic(context.Background(), record)
	return nil
}

func (uc *quotesUseCase) syncToElastic(ctx context.Context, record *model.QuoteRecord) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"order_id": { "type": "keyword" },
				"total_amount": { "type": "double" },
				"explanation": { "type": "text" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, quotesIndex, mapping)

	if err := uc.es.Index(ctx, quotesIndex, record.ID, record); err != nil {
		uc.logger.Error("failed to index quote", zap.Error(err))
	}
}

func (uc *quotesUseCase) Search(ctx context.Context, terms []string, limit int) ([]model.QuoteRecord, error) {
	if len(terms) > 0 && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", strings.Join(terms, "* *")),
					"fields": []string{"explanation"},
				},
			},
			"sort": []map[string]interface{}{
				{"created_at": map[string]interface{}{"order": "desc"}},
			},
		}
		if limit > 0 {
			q["size"] = limit
		}

		res, err := uc.es.Search(ctx, quotesIndex, q)
		if err == nil {
			var records []model.QuoteRecord
			for _, hit := range res.Hits.Hits {
				var rec model.QuoteRecord
				if err := json.Unmarshal(hit.Source, &rec); err == nil {
					records = append(records, rec)
				}
			}
			return records, nil
		}
		// If ES fails, fall through to the repository
		uc.logger.Error("ES quote search failed, falling back to repository", zap.Error(err))
	}

	return uc.repo.Search(ctx, terms, limit)
}
