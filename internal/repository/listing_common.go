package repository

import (
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// dialect builds Postgres statements with $n placeholders.
var dialect = goqu.Dialect("postgres")

// ratingExpr is the average review rating of the listing aliased as alias,
// zero when it has no reviews.  kind is a model.TargetType constant.
func ratingExpr(kind, alias string) goqu.Expression {
	return goqu.L(fmt.Sprintf(
		"COALESCE((SELECT AVG(rv.rating) FROM reviews rv WHERE rv.related_type = '%s' AND rv.related_id = %s.id), 0)::float8",
		kind, alias)).As("rating")
}

// text selects a nullable text column as an empty string.
func text(col string) goqu.Expression {
	return goqu.L(fmt.Sprintf("COALESCE(%s, '')", col))
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
