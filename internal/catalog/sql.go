package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const defaultTable = "interventions"

var reTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func isSQLSource(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "sqlite://") ||
		strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://")
}

// sqlTarget splits a catalog source into a database/sql driver, DSN and table.
func sqlTarget(source string) (driver, dsn, table string, err error) {
	table = defaultTable
	if strings.HasPrefix(strings.ToLower(source), "sqlite://") {
		rest := source[len("sqlite://"):]
		path, query, _ := strings.Cut(rest, "?")
		if path == "" {
			return "", "", "", fmt.Errorf("sqlite source %q has no path", source)
		}
		if query != "" {
			q, err := url.ParseQuery(query)
			if err != nil {
				return "", "", "", fmt.Errorf("parse sqlite query: %w", err)
			}
			if t := q.Get("table"); t != "" {
				table = t
			}
		}
		dsn = "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
		driver = "sqlite"
	} else {
		u, err := url.Parse(source)
		if err != nil {
			return "", "", "", fmt.Errorf("parse postgres dsn: %w", err)
		}
		q := u.Query()
		if t := q.Get("table"); t != "" {
			table = t
		}
		q.Del("table")
		u.RawQuery = q.Encode()
		dsn = u.String()
		driver = "pgx"
	}
	if !reTableName.MatchString(table) {
		return "", "", "", fmt.Errorf("invalid table name %q", table)
	}
	return driver, dsn, table, nil
}

func loadSQL(ctx context.Context, source string) ([]Record, error) {
	driver, dsn, table, err := sqlTarget(source)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var data [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return recordsFromRows(cols, data), nil
}

// redactDSN hides credentials for logging.
func redactDSN(source string) string {
	if !isSQLSource(source) || strings.HasPrefix(strings.ToLower(source), "sqlite://") {
		return source
	}
	u, err := url.Parse(source)
	if err != nil {
		return "postgres://<unparseable>"
	}
	return u.Redacted()
}

// WithDefaultTable adds a table parameter to SQL sources that do not name one.
// Other sources are returned unchanged.
func WithDefaultTable(source, table string) string {
	if table == "" || !isSQLSource(source) || strings.Contains(source, "table=") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "table=" + url.QueryEscape(table)
}
