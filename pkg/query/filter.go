// Package query compiles declarative filter/sort/page descriptions, delivered
// as JSON in query parameters or request bodies, into store predicates.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Op is one of the closed set of filter operators.
type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpLte   Op = "lte"
	OpLike  Op = "like"
	OpILike Op = "ilike"
	OpIs    Op = "is"
	OpIn    Op = "in"
)

var knownOps = map[Op]bool{
	OpEq: true, OpNeq: true, OpGt: true, OpGte: true, OpLt: true,
	OpLte: true, OpLike: true, OpILike: true, OpIs: true, OpIn: true,
}

var (
	// ErrUnknownOperator rejects operator keys outside the closed set.
	// Silent dropping would mask caller mistakes.
	ErrUnknownOperator = errors.New("unknown filter operator")
	ErrBadFilter       = errors.New("malformed filter")
	ErrBadSort         = errors.New("malformed sort")
)

// Predicate is one tagged filter condition. A bare scalar parses to OpEq, an
// array to OpIn, and an operator map to one Predicate per entry.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Filter is an ordered conjunction of predicates. Order follows the JSON
// document; it only influences index-use order, never the result set.
type Filter struct {
	Predicates []Predicate
}

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort is an ordered multi-key ordering clause.
type Sort []SortKey

// Page is an optional result window. Offset without Limit implies a default
// window of DefaultLimit rows.
type Page struct {
	Limit  int
	Offset int
}

const DefaultLimit = 100

// ParseFilter decodes a JSON filter object, preserving key order.
func ParseFilter(raw []byte) (Filter, error) {
	var f Filter
	if len(bytes.TrimSpace(raw)) == 0 {
		return f, nil
	}
	fields, err := orderedObject(raw)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	for _, kv := range fields {
		preds, err := parseField(kv.key, kv.raw)
		if err != nil {
			return Filter{}, err
		}
		f.Predicates = append(f.Predicates, preds...)
	}
	return f, nil
}

func parseField(field string, raw json.RawMessage) ([]Predicate, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		ops, err := orderedObject(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrBadFilter, field, err)
		}
		out := make([]Predicate, 0, len(ops))
		for _, op := range ops {
			o := Op(op.key)
			if !knownOps[o] {
				return nil, fmt.Errorf("%w: %q on field %s", ErrUnknownOperator, op.key, field)
			}
			var v any
			if err := json.Unmarshal(op.raw, &v); err != nil {
				return nil, fmt.Errorf("%w: field %s op %s: %v", ErrBadFilter, field, o, err)
			}
			if o == OpIn {
				if _, ok := v.([]any); !ok {
					return nil, fmt.Errorf("%w: field %s: in requires an array", ErrBadFilter, field)
				}
			}
			out = append(out, Predicate{Field: field, Op: o, Value: v})
		}
		return out, nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var vs []any
		if err := json.Unmarshal(raw, &vs); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrBadFilter, field, err)
		}
		return []Predicate{{Field: field, Op: OpIn, Value: vs}}, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrBadFilter, field, err)
		}
		return []Predicate{{Field: field, Op: OpEq, Value: v}}, nil
	}
}

// ParseSort decodes a JSON object of field -> "asc"|"desc", preserving order.
func ParseSort(raw []byte) (Sort, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	fields, err := orderedObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSort, err)
	}
	var s Sort
	for _, kv := range fields {
		var dir string
		if err := json.Unmarshal(kv.raw, &dir); err != nil {
			return nil, fmt.Errorf("%w: field %s", ErrBadSort, kv.key)
		}
		switch dir {
		case "asc":
			s = append(s, SortKey{Field: kv.key})
		case "desc":
			s = append(s, SortKey{Field: kv.key, Desc: true})
		default:
			return nil, fmt.Errorf("%w: field %s: direction %q", ErrBadSort, kv.key, dir)
		}
	}
	return s, nil
}

type keyedRaw struct {
	key string
	raw json.RawMessage
}

// orderedObject decodes a single JSON object keeping declaration order,
// which encoding/json maps discard.
func orderedObject(raw []byte) ([]keyedRaw, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}
	var out []keyedRaw
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, keyedRaw{key: key, raw: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
