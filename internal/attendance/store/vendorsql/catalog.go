package vendorsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

// Catalog lists vendor tables and columns for schema resolution.
type Catalog struct {
	conn *Conn
}

func NewCatalog(conn *Conn) *Catalog {
	return &Catalog{conn: conn}
}

func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return run(ctx, c.conn, "tables", func(ctx context.Context, db *sql.DB) ([]string, error) {
		rows, err := db.QueryContext(ctx, c.conn.dialect.tablesSQL)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, fmt.Errorf("scan table: %w", err)
			}
			out = append(out, name)
		}
		return out, rows.Err()
	})
}

func (c *Catalog) Columns(ctx context.Context, table string) ([]attendance.ColumnInfo, error) {
	return run(ctx, c.conn, "columns", func(ctx context.Context, db *sql.DB) ([]attendance.ColumnInfo, error) {
		rows, err := db.QueryContext(ctx, c.conn.dialect.columnsSQL, table)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []attendance.ColumnInfo
		for rows.Next() {
			var name, dataType sql.NullString
			if err := rows.Scan(&name, &dataType); err != nil {
				return nil, fmt.Errorf("scan column: %w", err)
			}
			out = append(out, attendance.ColumnInfo{
				Name:     name.String,
				DataType: strings.ToLower(strings.TrimSpace(dataType.String)),
			})
		}
		return out, rows.Err()
	})
}

var _ attendance.MetadataSource = (*Catalog)(nil)
