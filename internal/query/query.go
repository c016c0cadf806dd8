// Package query evaluates JSONPath selectors against decoded documents.
package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Eval runs a JSONPath selector against a decoded document and returns
// every matching value. A selector that matches nothing returns an
// empty slice, not an error.
func Eval(doc any, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(doc), nil
}
