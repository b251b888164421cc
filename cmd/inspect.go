package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect database schema and structure",
	Long: `Inspect the schema of the message database.

This command provides:
  • Schema version
  • Tables with their columns and indexes
  • Row counts and sample rows

Opening the database upgrades an older schema first.

Examples:
  gpt-web inspect                      # Text report
  gpt-web inspect --format json        # JSON report
  gpt-web inspect --sample 0           # Skip sample rows`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		handle, err := store.Open(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = handle.Release() }()

		report, err := inspectDatabase(cmd.Context(), handle, inspectSampleRows)
		if err != nil {
			return err
		}
		report.Path = store.Path()

		switch inspectFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "text", "":
			printReport(cmd.OutOrStdout(), report)
			return nil
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

// DatabaseReport describes the layout of an open database
type DatabaseReport struct {
	Path    string        `json:"path"`
	Version int           `json:"version"`
	Tables  []TableReport `json:"tables"`
}

// TableReport describes one table
type TableReport struct {
	Name    string              `json:"name"`
	Rows    int                 `json:"rows"`
	Columns []ColumnInfo        `json:"columns"`
	Indexes []string            `json:"indexes,omitempty"`
	Sample  []map[string]string `json:"sample,omitempty"`
}

// ColumnInfo is one row of PRAGMA table_info
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

func inspectDatabase(ctx context.Context, handle *internal.StorageHandle, sample int) (*DatabaseReport, error) {
	version, err := handle.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	db := handle.DB()
	tables, err := getTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	report := &DatabaseReport{Version: version, Tables: make([]TableReport, 0, len(tables))}
	for _, name := range tables {
		table, err := inspectTable(ctx, db, name, sample)
		if err != nil {
			internal.LogWarn("Error inspecting table %s: %v", name, err)
			continue
		}
		report.Tables = append(report.Tables, *table)
	}
	return report, nil
}

func getTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// quoteIdent quotes a SQLite identifier; table names here contain dashes
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func inspectTable(ctx context.Context, db *sql.DB, name string, sample int) (*TableReport, error) {
	table := &TableReport{Name: name}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&table.Rows); err != nil {
		return nil, fmt.Errorf("failed to get row count: %w", err)
	}

	columns, err := getTableSchema(ctx, db, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	table.Columns = columns

	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name = ? AND name NOT LIKE 'sqlite_%' ORDER BY name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	for rows.Next() {
		var index string
		if err := rows.Scan(&index); err != nil {
			_ = rows.Close()
			return nil, err
		}
		table.Indexes = append(table.Indexes, index)
	}
	_ = rows.Close()

	if table.Rows > 0 && sample > 0 {
		if table.Sample, err = sampleRows(ctx, db, name, columns, sample); err != nil {
			internal.LogWarn("Error reading sample rows of %s: %v", name, err)
		}
	}
	return table, nil
}

func getTableSchema(ctx context.Context, db *sql.DB, name string) ([]ColumnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid, notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func sampleRows(ctx context.Context, db *sql.DB, table string, columns []ColumnInfo, limit int) ([]map[string]string, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(names, ", "), quoteIdent(table), limit)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []map[string]string
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col.Name] = formatCell(values[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func formatCell(v interface{}) string {
	var s string
	switch v := v.(type) {
	case nil:
		return "<NULL>"
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	// First line only, truncated
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func printReport(w io.Writer, report *DatabaseReport) {
	_, _ = fmt.Fprintf(w, "📋 Database: %s\n", report.Path)
	_, _ = fmt.Fprintf(w, "🔢 Schema version: %d\n", report.Version)
	_, _ = fmt.Fprintf(w, "📊 Found %d table(s)\n\n", len(report.Tables))

	for _, table := range report.Tables {
		_, _ = fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		_, _ = fmt.Fprintf(w, "📦 Table: %s\n", table.Name)
		_, _ = fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		_, _ = fmt.Fprintf(w, "📊 Rows: %d\n\n", table.Rows)

		_, _ = fmt.Fprintf(w, "📐 Schema:\n")
		for _, col := range table.Columns {
			typ := col.Type
			if typ == "" {
				typ = "(any)"
			}
			pk := ""
			if col.PrimaryKey {
				pk = " [PRIMARY KEY]"
			}
			notNull := ""
			if col.NotNull {
				notNull = " NOT NULL"
			}
			_, _ = fmt.Fprintf(w, "  • %s: %s%s%s\n", col.Name, typ, notNull, pk)
		}
		for _, index := range table.Indexes {
			_, _ = fmt.Fprintf(w, "  ↳ index %s\n", index)
		}
		_, _ = fmt.Fprintln(w)

		if len(table.Sample) > 0 {
			_, _ = fmt.Fprintf(w, "📄 Sample Data (first %d rows):\n", len(table.Sample))
			for i, row := range table.Sample {
				_, _ = fmt.Fprintf(w, "\n  Row %d:\n", i+1)
				for _, col := range table.Columns {
					_, _ = fmt.Fprintf(w, "    %s: %s\n", col.Name, row[col.Name])
				}
			}
			_, _ = fmt.Fprintln(w)
		}
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
