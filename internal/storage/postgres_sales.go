package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trafficpulse/ads-tracker/internal/models"
)

// PostgresSaleRepo implements SaleRepo using PostgreSQL.
type PostgresSaleRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresSaleRepo creates a new PostgreSQL-backed sale repository.
func NewPostgresSaleRepo(pool *pgxpool.Pool) *PostgresSaleRepo {
	return &PostgresSaleRepo{pool: pool}
}

// ListSales returns sales matching the filter, newest first. The free-text
// type column is classified into a SaleKind as rows are scanned.
func (r *PostgresSaleRepo) ListSales(ctx context.Context, filter SaleFilter) ([]models.Sale, error) {
	query := `
		SELECT id, created_at, amount, commission, type, campaign_id, platform,
		       customer_name, customer_email
		FROM sales`

	var args []interface{}
	var conds []string

	if filter.CampaignID != "" {
		args = append(args, filter.CampaignID)
		conds = append(conds, "campaign_id = $"+strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, "created_at < $"+strconv.Itoa(len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		var rawType, campaignID, platform, custName, custEmail *string

		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Amount, &s.Commission,
			&rawType, &campaignID, &platform, &custName, &custEmail); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		if rawType != nil {
			s.RawType = *rawType
		}
		if campaignID != nil {
			s.CampaignID = *campaignID
		}
		if platform != nil {
			s.Platform = *platform
		}
		if custName != nil {
			s.CustomerName = *custName
		}
		if custEmail != nil {
			s.CustomerEmail = *custEmail
		}
		s.Kind = models.ParseSaleKind(s.RawType)

		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}

	return sales, nil
}
