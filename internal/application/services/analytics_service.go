package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/meridiancrm/backend/pkg/auth"
)

// maxAnalyticsRows caps result sets regardless of the query's own LIMIT.
const maxAnalyticsRows = 1000

// AnalyticsService executes validated ad-hoc SELECT queries for reporting.
// All SQL goes through the SecurityValidator first.
type AnalyticsService struct {
	db        *sql.DB
	validator *SecurityValidator
}

func NewAnalyticsService(db *sql.DB, validator *SecurityValidator) *AnalyticsService {
	return &AnalyticsService{db: db, validator: validator}
}

// QueryResult is the generic analytics response.
type QueryResult struct {
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	RowCount  int                      `json:"row_count"`
	Truncated bool                     `json:"truncated"`
}

// Query validates, rewrites, and runs an analytics SELECT.
func (s *AnalyticsService) Query(ctx context.Context, user *auth.UserSession, query string) (*QueryResult, error) {
	rewritten, err := s.validator.ValidateAndRewrite(query, user)
	if err != nil {
		return nil, err
	}

	log.Printf("📊 Analytics query by %s: %s", user.ID, rewritten)

	rows, err := s.db.QueryContext(ctx, rewritten)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    make([]map[string]interface{}, 0),
	}

	for rows.Next() {
		if len(result.Rows) >= maxAnalyticsRows {
			result.Truncated = true
			break
		}

		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// MySQL driver returns []byte for text columns
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
