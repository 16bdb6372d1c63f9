package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Statements splits the embedded schema into single statements, since the
// driver runs one statement per Exec.
func Statements() []string {
	var stmts []string
	for _, s := range strings.Split(schema, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		stmts = append(stmts, s)
	}
	return stmts
}

// ApplySchema creates any missing tables. Every statement is idempotent.
func (s *Store) ApplySchema(ctx context.Context) error {
	for i, stmt := range Statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applySchema: statement %d: %w", i, classify(err))
		}
	}
	return nil
}
