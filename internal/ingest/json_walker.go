package ingest

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// DefaultRecordsPath selects a document that is itself the record array.
const DefaultRecordsPath = "$"

// JSONSelector picks values out of decoded JSON with a JSONPath expression.
type JSONSelector struct {
	expr jp.Expr
	raw  string
}

func NewJSONSelector(selector string) (*JSONSelector, error) {
	if selector == "" {
		selector = DefaultRecordsPath
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return &JSONSelector{expr: x, raw: selector}, nil
}

// Select returns every value the expression matches in root.
func (s *JSONSelector) Select(root any) []any {
	return s.expr.Get(root)
}

// Items resolves the expression to a list of elements. A single array match
// yields its elements; a selector ending in a wildcard yields its matches.
// Anything else does not describe a list and is reported as an error.
func (s *JSONSelector) Items(root any) ([]any, error) {
	results := s.Select(root)
	if len(results) == 1 {
		if arr, ok := results[0].([]any); ok {
			return arr, nil
		}
	}
	if strings.HasSuffix(s.raw, "[*]") {
		return results, nil
	}
	return nil, fmt.Errorf("%q does not select an array (%d matches)", s.raw, len(results))
}

func (s *JSONSelector) String() string {
	return s.raw
}
