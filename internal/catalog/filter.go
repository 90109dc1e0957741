package catalog

import (
	"strings"

	"gorm.io/gorm/clause"
)

type filterClause func(ListFilter) (clause.Expression, bool)

// listingClauses enumerates every optional predicate. Present ones are AND-combined.
var listingClauses = []filterClause{
	textContains,
	categoryEquals,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f ListFilter) predicates() []clause.Expression {
	exprs := make([]clause.Expression, 0, len(listingClauses))
	for _, build := range listingClauses {
		if expr, ok := build(f); ok {
			exprs = append(exprs, expr)
		}
	}
	return exprs
}

func textContains(f ListFilter) (clause.Expression, bool) {
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return nil, false
	}
	pattern := "%" + likeEscaper.Replace(q) + "%"
	return clause.Expr{
		SQL:  `(p.title LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\')`,
		Vars: []interface{}{pattern, pattern},
	}, true
}

func categoryEquals(f ListFilter) (clause.Expression, bool) {
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return nil, false
	}
	return clause.Expr{SQL: "p.category = ?", Vars: []interface{}{category}}, true
}
