package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

// fieldCount is the number of value columns (v0..v5) in the rule table.
const fieldCount = 6

// Commander is the subset of pgxpool.Pool used by the adapter.
type Commander interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type store struct {
	db    Commander
	table string

	insertSQL string
	deleteSQL string
}

func newStore(db Commander, table string) *store {
	table = lo.SnakeCase(table)
	cols := strings.Join(lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) }), ", ")
	params := strings.Join(lo.Times(fieldCount, func(i int) string { return "$" + strconv.Itoa(i+2) }), ", ")
	match := strings.Join(lo.Times(fieldCount, func(i int) string {
		return "v" + strconv.Itoa(i) + " = $" + strconv.Itoa(i+2)
	}), " AND ")

	return &store{
		db:        db,
		table:     table,
		insertSQL: fmt.Sprintf("INSERT INTO %s (ptype, %s) VALUES ($1, %s) ON CONFLICT DO NOTHING", table, cols, params),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE ptype = $1 AND %s", table, match),
	}
}

// ruleArgs pads rule to fieldCount values and prefixes ptype.
func ruleArgs(ptype string, rule []string) ([]any, error) {
	if len(rule) > fieldCount {
		return nil, fmt.Errorf("%w: %d > %d", ErrRuleTooLong, len(rule), fieldCount)
	}
	padded := make([]string, fieldCount)
	copy(padded, rule)
	return lo.ToAnySlice(append([]string{ptype}, padded...)), nil
}

func (s *store) selectAll(ctx context.Context) ([][]string, error) {
	cols := strings.Join(lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) }), ", ")
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT ptype, %s FROM %s ORDER BY id", cols, s.table))
	if err != nil {
		return nil, errors.Join(ErrSelect, err)
	}
	defer rows.Close()

	var lines [][]string
	for rows.Next() {
		line := make([]string, fieldCount+1)
		if err := rows.Scan(lo.ToAnySlice(lo.Map(line, func(_ string, i int) *string { return &line[i] }))...); err != nil {
			return nil, errors.Join(ErrSelect, err)
		}
		lines = append(lines, trimTrailingEmpty(line))
	}

	return lines, rows.Err()
}

func (s *store) insert(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.insertSQL, args...); err != nil {
		return errors.Join(ErrInsertRow, err)
	}
	return nil
}

func (s *store) delete(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.deleteSQL, args...); err != nil {
		return errors.Join(ErrDeleteRow, err)
	}
	return nil
}

func (s *store) deleteWhere(ctx context.Context, ptype string, fieldIndex int, values ...string) error {
	if ptype == "" {
		return ErrEmptyPtype
	}
	if fieldIndex < 0 || len(values) > fieldCount-fieldIndex {
		return fmt.Errorf("%w: %d > %d", ErrArgsTooLong, len(values), fieldCount-fieldIndex)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE ptype = $1", s.table)
	args := []any{ptype}
	for i, v := range values {
		if v == "" {
			continue
		}
		args = append(args, v)
		query += fmt.Sprintf(" AND v%d = $%d", i+fieldIndex, len(args))
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return errors.Join(ErrDeleteRow, err)
	}
	return nil
}

func (s *store) batch(ctx context.Context, sql, ptype string, rules [][]string) error {
	if len(rules) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, rule := range rules {
		args, err := ruleArgs(ptype, rule)
		if err != nil {
			return err
		}
		b.Queue(sql, args...)
	}

	if err := s.db.SendBatch(ctx, b).Close(); err != nil {
		return errors.Join(ErrBatchExec, err)
	}
	return nil
}

// replaceAll swaps the whole table for lines ([ptype, v0..]) in one transaction.
func (s *store) replaceAll(ctx context.Context, lines [][]string) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rbErr)
		}
	}()

	if _, err = tx.Exec(ctx, "DELETE FROM "+s.table); err != nil {
		return errors.Join(ErrDeleteRow, err)
	}

	b := &pgx.Batch{}
	for _, line := range lines {
		if len(line) == 0 {
			return ErrRuleEmpty
		}
		args, err := ruleArgs(line[0], line[1:])
		if err != nil {
			return err
		}
		b.Queue(s.insertSQL, args...)
	}
	if b.Len() > 0 {
		if err = tx.SendBatch(ctx, b).Close(); err != nil {
			return errors.Join(ErrBatchExec, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitTx, err)
	}
	return nil
}

func trimTrailingEmpty(rule []string) []string {
	last := len(rule) - 1
	for last >= 0 && rule[last] == "" {
		last--
	}
	return rule[:last+1]
}
