package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	toolutil "github.com/sandrolain/table-bridge/testers/toolutil"
	"github.com/sandrolain/table-bridge/testers/toolutil/testpayload"
	"github.com/spf13/cobra"
)

// quoteTable quotes each part of a schema-qualified name.
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(strings.ToLower(p), `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func openDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("DB open error: %w", err)
	}
	return db, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		toolutil.PrintError("Failed to close DB connection: %v", err)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "pgsqltool",
		Short: "table-bridge PostgreSQL tester",
		Long:  "Seeds the source table with generated rows and shows the content of a table.",
	}

	root.AddCommand(newSeedCommand(), newShowCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	var (
		connStr      string
		table        string
		interval     string
		count        int
		startID      int64
		invalidEvery int
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the source table and insert generated rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := toolutil.Logger()

			db, err := openDB(connStr)
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			quoted := quoteTable(table)
			if schema, _, ok := strings.Cut(quoted, "."); ok {
				if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
					return fmt.Errorf("schema creation error: %w", err)
				}
			}
			// valor is TEXT so that rows rejected by the destination can be seeded
			createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				nome VARCHAR(100),
				categoria VARCHAR(50),
				valor TEXT,
				data_criacao TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`, quoted) // #nosec G201 -- test tool with quoted table name
			if _, err := db.ExecContext(ctx, createTable); err != nil {
				return fmt.Errorf("table creation error: %w", err)
			}
			logger.Info("table ready", "table", table)

			insert := fmt.Sprintf(`INSERT INTO %s (id, nome, categoria, valor, data_criacao)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET nome = EXCLUDED.nome, categoria = EXCLUDED.categoria, valor = EXCLUDED.valor`, quoted) // #nosec G201 -- test tool with quoted table name

			next := startID
			seed := func() {
				rows, err := testpayload.GenerateRows(next, count, invalidEvery)
				if err != nil {
					toolutil.PrintError("%v", err)
					return
				}
				for _, r := range rows {
					if _, err := db.Exec(insert, r.ID, r.Nome, r.Categoria, r.Valor, r.DataCriacao); err != nil {
						toolutil.PrintError("Insert error for id %d: %v", r.ID, err)
						continue
					}
					toolutil.PrintColoredRow("Inserted", r)
				}
				next += int64(count)
			}

			seed()
			if interval == "" {
				return nil
			}

			dur, err := time.ParseDuration(interval)
			if err != nil {
				return fmt.Errorf("invalid interval: %w", err)
			}
			ticker := time.NewTicker(dur)
			defer ticker.Stop()
			logger.Info("inserting periodically", "table", table, "every", dur)
			for range ticker.C {
				seed()
			}
			return nil
		},
	}

	toolutil.AddConnFlag(seedCmd, &connStr)
	toolutil.AddTableFlag(seedCmd, &table, "")
	toolutil.AddIntervalFlag(seedCmd, &interval, "")
	seedCmd.Flags().IntVar(&count, "count", 10, "Rows to insert per batch")
	seedCmd.Flags().Int64Var(&startID, "start-id", 1, "First id to insert")
	seedCmd.Flags().IntVar(&invalidEvery, "invalid-every", 0, "Give every n-th row a non numeric valor (0 disables)")
	return seedCmd
}

func newShowCommand() *cobra.Command {
	var (
		connStr string
		table   string
	)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rows of a table ordered by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(connStr)
			if err != nil {
				return err
			}
			defer closeDB(db)

			query := fmt.Sprintf("SELECT id, nome, categoria, valor::text, data_criacao FROM %s ORDER BY id", quoteTable(table)) // #nosec G201 -- test tool with quoted table name
			rows, err := db.QueryContext(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("query error: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				var (
					r         testpayload.Row
					nome, cat sql.NullString
					valor     sql.NullString
					created   sql.NullTime
				)
				if err := rows.Scan(&r.ID, &nome, &cat, &valor, &created); err != nil {
					return fmt.Errorf("scan error: %w", err)
				}
				r.Nome, r.Categoria, r.Valor, r.DataCriacao = nome.String, cat.String, valor.String, created.Time
				toolutil.PrintColoredRow(table, r)
			}
			return rows.Err()
		},
	}

	toolutil.AddConnFlag(showCmd, &connStr)
	toolutil.AddTableFlag(showCmd, &table, "")
	return showCmd
}
