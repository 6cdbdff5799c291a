package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
)

var errNegative = errors.New("must not be negative")

// queryParser reads list filters from a query string. The first failure is kept in err.
type queryParser struct {
	values url.Values
	err    error
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) fail(name, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %w", errMalformedQuery, name, raw, err)
	}
}

func (p *queryParser) raw(name string) (string, bool) {
	if !p.values.Has(name) {
		return "", false
	}

	return strings.TrimSpace(p.values.Get(name)), true
}

func (p *queryParser) string(name string) types.Optional[string] {
	raw, ok := p.raw(name)
	if !ok || raw == "" {
		return types.None[string]()
	}

	return types.Some(raw)
}

// lower is string with the value lowercased, for hex keys and addresses.
func (p *queryParser) lower(name string) types.Optional[string] {
	if v, ok := p.string(name).Get(); ok {
		return types.Some(strings.ToLower(v))
	}

	return types.None[string]()
}

func (p *queryParser) parsed(name string, parse func(string) (string, error)) types.Optional[string] {
	raw, ok := p.raw(name)
	if !ok || raw == "" {
		return types.None[string]()
	}

	v, err := parse(raw)
	if err != nil {
		p.fail(name, raw, err)
		return types.None[string]()
	}

	return types.Some(v)
}

func (p *queryParser) bool(name string) types.Optional[bool] {
	raw, ok := p.raw(name)
	if !ok || raw == "" {
		return types.None[bool]()
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, raw, err)
		return types.None[bool]()
	}

	return types.Some(v)
}

func (p *queryParser) int(name string) int {
	raw, ok := p.raw(name)
	if !ok || raw == "" {
		return 0
	}

	v, err := strconv.Atoi(raw)
	if err == nil && v < 0 {
		err = errNegative
	}
	if err != nil {
		p.fail(name, raw, err)
		return 0
	}

	return v
}

func (p *queryParser) page() storage.Page {
	return storage.Page{
		Limit:  p.int("limit"),
		Offset: p.int("offset"),
	}.Normalize()
}
