// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlitefetch implements the Sqlite fetch.Method kind (spec.md
// §4.6): the method's query text is run against its DB path with the
// queried names bound as an IN-list parameter, and every row's Name
// column is matched back to the FeatureSeq it came from.
package sqlitefetch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kortschak/seqtools/feature"
	"github.com/kortschak/seqtools/fetch"
)

// Client runs SQLite queries against a fixed database file.
type Client struct {
	// cache of *sql.DB keyed by DB path, so repeated Fetch calls against
	// the same method reuse one connection pool.
	conns map[string]*sql.DB
}

// NewClient returns a Client with no open connections.
func NewClient() *Client {
	return &Client{conns: make(map[string]*sql.DB)}
}

func (c *Client) db(path string) (*sql.DB, error) {
	if db, ok := c.conns[path]; ok {
		return db, nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	c.conns[path] = db
	return db, nil
}

// Close releases every open connection.
func (c *Client) Close() error {
	var first error
	for _, db := range c.conns {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Fetch runs method.Query against method.DBPath, substituting the
// literal token "?NAMES?" in the query text with a placeholder
// IN-list sized to names, and requires a "Name" column in the result
// set (spec.md §4.6's SQLite back-end contract).
func (c *Client) Fetch(ctx context.Context, method fetch.Method, names []string) (map[string]fetch.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}
	db, err := c.db(method.DBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlitefetch: opening %s: %w", method.DBPath, err)
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, n := range names {
		placeholders[i] = "?"
		args[i] = n
	}
	query := strings.Replace(method.Query, "?NAMES?", strings.Join(placeholders, ","), 1)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitefetch: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlitefetch: columns: %w", err)
	}
	nameIdx := -1
	for i, c := range cols {
		if strings.EqualFold(c, "Name") {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("sqlitefetch: result has no Name column")
	}

	out := make(map[string]fetch.Record)
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlitefetch: scan: %w", err)
		}

		name := asString(vals[nameIdx])
		rec := fetch.Record{Columns: make(map[feature.ColumnID]string, len(cols)-1)}
		for i, colName := range cols {
			if i == nameIdx {
				continue
			}
			v := asString(vals[i])
			if strings.EqualFold(colName, "sequence") {
				rec.Sequence = v
				continue
			}
			rec.Columns[feature.ColumnID(strings.ToUpper(colName))] = v
		}
		out[name] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitefetch: iterating rows: %w", err)
	}
	return out, nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
