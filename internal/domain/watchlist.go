package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// WatchlistEntry is one monitored company. Either identifier may be empty,
// in which case that source is skipped for the company.
type WatchlistEntry struct {
	Company  string
	NewsID   string // stock code for the news source
	ReportID string // corporation code for the disclosure source
}

const watchlistSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "minItems": 2,
    "maxItems": 2,
    "items": {"type": ["string", "null"]}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledWatchlistSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("watchlist.schema.json", watchlistSchema)
	})
	return schema, schemaErr
}

// DecodeWatchlist parses {"<company>": [newsIdOrNull, reportIdOrNull]}.
// Names are trimmed and must stay unique; entries are returned sorted by
// company name.
func DecodeWatchlist(b []byte) ([]WatchlistEntry, error) {
	sch, err := compiledWatchlistSchema()
	if err != nil {
		return nil, fmt.Errorf("compile watchlist schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid watchlist: %w", err)
	}

	var raw map[string][]*string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	out := make([]WatchlistEntry, 0, len(raw))
	seen := make(map[string]string, len(raw))
	for company, ids := range raw {
		name := strings.TrimSpace(company)
		if name == "" {
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("invalid watchlist: %q and %q name the same company", prev, company)
		}
		seen[name] = company
		out = append(out, WatchlistEntry{
			Company:  name,
			NewsID:   deref(ids[0]),
			ReportID: deref(ids[1]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
