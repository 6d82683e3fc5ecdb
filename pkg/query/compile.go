package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Query is a compiled store query: a WHERE conjunction with positional pgx
// args, an ORDER BY clause and a result window.
type Query struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int // 0 means no limit
	Offset  int
}

// ErrBadField rejects field names that are not plain lowercase identifiers,
// since they are interpolated into SQL.
var ErrBadField = errors.New("invalid field name")

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var sqlOps = map[Op]string{
	OpEq:    "=",
	OpNeq:   "<>",
	OpGt:    ">",
	OpGte:   ">=",
	OpLt:    "<",
	OpLte:   "<=",
	OpLike:  "LIKE",
	OpILike: "ILIKE",
}

// Compile translates the parsed filter, sort and page into a Query.
// Predicates are combined conjunctively in document order.
func Compile(f Filter, s Sort, p Page) (Query, error) {
	return CompileFrom(f, s, p, 0)
}

// CompileFrom compiles with positional placeholders starting at argOffset+1,
// for callers that prepend their own args (e.g. a tenant guard).
func CompileFrom(f Filter, s Sort, p Page, argOffset int) (Query, error) {
	var q Query
	var conds []string
	for _, pred := range f.Predicates {
		if !identRe.MatchString(pred.Field) {
			return Query{}, fmt.Errorf("%w: %q", ErrBadField, pred.Field)
		}
		switch pred.Op {
		case OpIn:
			q.Args = append(q.Args, pred.Value)
			conds = append(conds, fmt.Sprintf("%s = ANY($%d)", pred.Field, argOffset+len(q.Args)))
		case OpIs:
			cond, err := isCondition(pred)
			if err != nil {
				return Query{}, err
			}
			conds = append(conds, cond)
		default:
			q.Args = append(q.Args, pred.Value)
			conds = append(conds, fmt.Sprintf("%s %s $%d", pred.Field, sqlOps[pred.Op], argOffset+len(q.Args)))
		}
	}
	q.Where = strings.Join(conds, " AND ")

	var orders []string
	for _, k := range s {
		if !identRe.MatchString(k.Field) {
			return Query{}, fmt.Errorf("%w: %q", ErrBadField, k.Field)
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		orders = append(orders, k.Field+" "+dir)
	}
	q.OrderBy = strings.Join(orders, ", ")

	q.Limit = p.Limit
	q.Offset = p.Offset
	if q.Offset > 0 && q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q, nil
}

// isCondition handles the null/boolean IS forms: null -> IS NULL,
// "not_null" -> IS NOT NULL, true/false -> IS TRUE/IS FALSE.
func isCondition(pred Predicate) (string, error) {
	switch v := pred.Value.(type) {
	case nil:
		return pred.Field + " IS NULL", nil
	case bool:
		if v {
			return pred.Field + " IS TRUE", nil
		}
		return pred.Field + " IS FALSE", nil
	case string:
		if v == "not_null" || v == "not null" {
			return pred.Field + " IS NOT NULL", nil
		}
	}
	return "", fmt.Errorf("%w: field %s: is accepts null, booleans or \"not_null\"", ErrBadFilter, pred.Field)
}

// Clause renders the trailing SQL for a SELECT over the compiled query.
func (q Query) Clause() string {
	var b strings.Builder
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(q.Offset))
	}
	return b.String()
}

// FromValues parses the boundary form: JSON-encoded "filter" and "sort"
// query parameters plus integer "limit"/"offset". argOffset shifts the
// compiled placeholders past any args the caller prepends.
func FromValues(v url.Values, argOffset int) (Query, error) {
	f, err := ParseFilter([]byte(v.Get("filter")))
	if err != nil {
		return Query{}, err
	}
	s, err := ParseSort([]byte(v.Get("sort")))
	if err != nil {
		return Query{}, err
	}
	var p Page
	if lim := v.Get("limit"); lim != "" {
		n, err := strconv.Atoi(lim)
		if err != nil || n < 0 {
			return Query{}, fmt.Errorf("%w: limit %q", ErrBadFilter, lim)
		}
		p.Limit = n
	}
	if off := v.Get("offset"); off != "" {
		n, err := strconv.Atoi(off)
		if err != nil || n < 0 {
			return Query{}, fmt.Errorf("%w: offset %q", ErrBadFilter, off)
		}
		p.Offset = n
	}
	return CompileFrom(f, s, p, argOffset)
}
