// Package sql ships the service's database schema as embedded assets so
// deployments can bootstrap Postgres and ClickHouse without external
// migration tooling.
package sql

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed schema/*.sql
//go:embed clickhouse/*.sql
var Content embed.FS

// PostgresSchemas returns the Postgres DDL files in lexical order.
func PostgresSchemas() ([]string, error) {
	return readDir("schema")
}

// ClickHouseSchemas returns the ClickHouse DDL files in lexical order.
// Each file holds a single statement; the ClickHouse driver does not
// accept multi-statement queries.
func ClickHouseSchemas() ([]string, error) {
	return readDir("clickhouse")
}

func readDir(dir string) ([]string, error) {
	entries, err := Content.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := Content.ReadFile(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded %s/%s: %w", dir, name, err)
		}
		stmts = append(stmts, string(data))
	}
	return stmts, nil
}
