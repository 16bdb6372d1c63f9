package store

import (
	"context"
	"eventers-ticketing/failure"
	"fmt"
	"strings"
)

func placeholders(n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = "?"
	}
	return strings.Join(params, ", ")
}

// insert writes one row per entry of rows in a single statement and returns
// the id of the first inserted row.
func insert(ctx context.Context, q querier, table string, cols []string, rows [][]interface{}) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert: no rows for %s", table)
	}

	group := "(" + placeholders(len(cols)) + ")"
	groups := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for _, row := range rows {
		if len(row) != len(cols) {
			return 0, fmt.Errorf("insert: %s: got %d values for %d columns", table, len(row), len(cols))
		}
		groups = append(groups, group)
		args = append(args, row...)
	}

	tsql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s`, table, strings.Join(cols, ", "), strings.Join(groups, ", "))

	result, err := q.ExecContext(ctx, tsql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert: unable to insert records in %s: %w", table, classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert: unable to read rows affected in %s: %w", table, classify(err))
	}
	if affected != int64(len(rows)) {
		return 0, fmt.Errorf("insert: %s: inserted %d of %d rows: %w", table, affected, len(rows), wrap(failure.ErrStoreFailure, errShortWrite))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert: unable to read last insert id in %s: %w", table, classify(err))
	}
	return id, nil
}

func update(ctx context.Context, q querier, table string, cols []string, values []interface{}, column []string, value []interface{}) (int64, error) {
	set := make([]string, 0, len(cols))
	for _, col := range cols {
		set = append(set, fmt.Sprintf("%s = ?", col))
	}

	conds := make([]string, 0, len(column))
	for _, c := range column {
		conds = append(conds, fmt.Sprintf("%s = ?", c))
	}

	tsql := fmt.Sprintf(`UPDATE %s SET %s WHERE %s`, table, strings.Join(set, ", "), strings.Join(conds, " AND "))

	args := make([]interface{}, 0, len(values)+len(value))
	args = append(args, values...)
	args = append(args, value...)

	result, err := q.ExecContext(ctx, tsql, args...)
	if err != nil {
		return 0, fmt.Errorf("update: unable to update record in %s: %w", table, classify(err))
	}

	return result.RowsAffected()
}
