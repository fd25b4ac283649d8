// Package postgres は PostgreSQL を利用した永続化アダプタを提供します。
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	return &t
}

// jsonbValue は JSONB 列へ渡す値を返します。nil は SQL NULL になります。
func jsonbValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal jsonb: %w", err)
	}
	return raw, nil
}

// scanJSONB は JSONB 列の生バイト列を target へ展開します。NULL は無視します。
func scanJSONB(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("postgres: unmarshal jsonb: %w", err)
	}
	return nil
}
