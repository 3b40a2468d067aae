package store

import (
	"database/sql"
	"math"
)

// nullableFloat maps NaN to NULL. SQLite would do the same implicitly; being
// explicit keeps the read side symmetric.
func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// floatOrNaN maps NULL back to NaN.
func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
