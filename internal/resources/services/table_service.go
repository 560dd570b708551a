package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/resources/models"
	"github.com/c14220110/hospital-dashboard/pkg/storage/mariadb"
)

// TableService implements the resource actions for one Schema.
type TableService struct {
	DB     *sql.DB
	Schema *Schema
}

func NewTableService(db *sql.DB, schema *Schema) *TableService {
	return &TableService{DB: db, Schema: schema}
}

// Result is a list or filter outcome together with the query that produced it.
type Result struct {
	Rows  []models.Row
	Query Query
}

// List returns every row in the default order.
func (s *TableService) List(ctx context.Context) (Result, error) {
	return s.Filter(ctx, nil)
}

// Filter returns the rows matching params. See Schema.BuildSelect.
func (s *TableService) Filter(ctx context.Context, params map[string]string) (Result, error) {
	q, err := s.Schema.BuildSelect(params)
	if err != nil {
		return Result{}, apperror.Validation("Invalid filter: %v", err)
	}

	rows, err := s.DB.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return Result{Query: q}, s.storeError("Failed to fetch "+s.Schema.Resource, err)
	}
	defer rows.Close()

	list := []models.Row{}
	for rows.Next() {
		row, err := s.scanRow(rows)
		if err != nil {
			return Result{Query: q}, s.storeError("Failed to read "+s.Schema.Resource, err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return Result{Query: q}, s.storeError("Failed to read "+s.Schema.Resource, err)
	}
	return Result{Rows: list, Query: q}, nil
}

// Get returns one row by id.
func (s *TableService) Get(ctx context.Context, id int64) (models.Row, error) {
	if id <= 0 {
		return nil, apperror.Validation("%s ID is required", s.Schema.Entity)
	}
	q := s.Schema.BuildGet(id)
	rows, err := s.DB.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, s.storeError("Failed to fetch "+strings.ToLower(s.Schema.Entity), err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, s.storeError("Failed to fetch "+strings.ToLower(s.Schema.Entity), err)
		}
		return nil, s.notFound()
	}
	return s.scanRow(rows)
}

func (s *TableService) scanRow(rows *sql.Rows) (models.Row, error) {
	dests := make([]interface{}, len(s.Schema.Columns))
	for i, c := range s.Schema.Columns {
		dests[i] = scanDest(c.Kind)
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}
	row := make(models.Row, len(dests))
	for i, c := range s.Schema.Columns {
		row[c.Name] = scannedValue(c.Kind, dests[i])
	}
	return row, nil
}

type assignment struct {
	column string
	value  interface{}
}

// validate checks input against the writable columns. On create every
// writable column is assigned; on edit only the fields present in input.
func (s *TableService) validate(input map[string]interface{}, create bool) ([]assignment, error) {
	var (
		out     []assignment
		missing []string
	)
	for _, c := range s.Schema.writable() {
		raw, present := requestString(input[c.Name])
		if create && raw == "" && c.Default != nil {
			raw, present = fmt.Sprint(c.Default), true
		}
		if !present && !create {
			continue
		}
		if c.Required && raw == "" {
			missing = append(missing, c.Label)
			continue
		}
		v, err := columnArg(c, raw)
		if err != nil {
			return nil, apperror.Validation("%v", err)
		}
		out = append(out, assignment{column: c.Name, value: v})
	}
	if len(missing) > 0 {
		return nil, apperror.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Create validates and inserts input, returning the generated id.
func (s *TableService) Create(ctx context.Context, input map[string]interface{}) (int64, error) {
	values, err := s.validate(input, true)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		effective := make(map[string]interface{}, len(values))
		for _, a := range values {
			effective[a.column] = a.value
		}
		if err := s.checkReferences(ctx, tx, effective); err != nil {
			return err
		}
		for _, hook := range s.Schema.Hooks {
			if err := hook(ctx, tx, 0, effective); err != nil {
				return err
			}
		}

		cols := make([]string, len(values))
		marks := make([]string, len(values))
		args := make([]interface{}, len(values))
		for i, a := range values {
			cols[i], marks[i], args[i] = a.column, "?", a.value
		}
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Schema.Table, strings.Join(cols, ", "), strings.Join(marks, ", ")),
			args...)
		if err != nil {
			return s.writeError("Failed to create "+strings.ToLower(s.Schema.Entity), err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return s.storeError("Failed to read new id", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("resource", s.Schema.Resource).Int64("id", id).Msg("created")
	return id, nil
}

// Edit validates input and updates the row with the given id.
func (s *TableService) Edit(ctx context.Context, id int64, input map[string]interface{}) error {
	if id <= 0 {
		return apperror.Validation("%s ID is required", s.Schema.Entity)
	}
	values, err := s.validate(input, false)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return apperror.Validation("No fields to update")
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		effective, err := s.lockRow(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, a := range values {
			effective[a.column] = a.value
		}
		if err := s.checkReferences(ctx, tx, effective); err != nil {
			return err
		}
		for _, hook := range s.Schema.Hooks {
			if err := hook(ctx, tx, id, effective); err != nil {
				return err
			}
		}

		sets := make([]string, len(values))
		args := make([]interface{}, 0, len(values)+1)
		for i, a := range values {
			sets[i] = a.column + " = ?"
			args = append(args, a.value)
		}
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.Schema.Table, strings.Join(sets, ", ")),
			args...); err != nil {
			return s.writeError("Failed to update "+strings.ToLower(s.Schema.Entity), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("resource", s.Schema.Resource).Int64("id", id).Msg("updated")
	return nil
}

// Delete removes the row after its guards pass.
func (s *TableService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("%s ID is required", s.Schema.Entity)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockRow(ctx, tx, id); err != nil {
			return err
		}
		for _, g := range s.Schema.Guards {
			var n int64
			q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", g.Table, g.Column)
			if err := tx.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
				return s.storeError("Failed to check dependent records", err)
			}
			if n > 0 {
				return apperror.Conflict(g.Message, n)
			}
		}
		for _, d := range s.Schema.Detaches {
			q := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", d.Table, d.Column, d.Column)
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return s.storeError("Failed to detach dependent records", err)
			}
		}

		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.Schema.Table), id)
		if err != nil {
			return s.writeError("Failed to delete "+strings.ToLower(s.Schema.Entity), err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return s.storeError("Failed to delete "+strings.ToLower(s.Schema.Entity), err)
		}
		if affected == 0 {
			return s.notFound()
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("resource", s.Schema.Resource).Int64("id", id).Msg("deleted")
	return nil
}

// FilterOptions returns the values offered by the filter drop-downs.
func (s *TableService) FilterOptions(ctx context.Context) (map[string][]models.Option, error) {
	out := make(map[string][]models.Option, len(s.Schema.Options))
	for _, src := range s.Schema.Options {
		opts := []models.Option{}
		if src.Query == "" {
			for _, v := range src.Values {
				opts = append(opts, models.Option{Value: v, Label: v})
			}
			out[src.Key] = opts
			continue
		}

		rows, err := s.DB.QueryContext(ctx, src.Query)
		if err != nil {
			return nil, s.storeError("Failed to load filter options", err)
		}
		for rows.Next() {
			var (
				value sql.NullString
				label sql.NullString
			)
			if err := rows.Scan(&value, &label); err != nil {
				rows.Close()
				return nil, s.storeError("Failed to load filter options", err)
			}
			if !value.Valid {
				continue
			}
			opts = append(opts, models.Option{Value: value.String, Label: label.String})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, s.storeError("Failed to load filter options", err)
		}
		out[src.Key] = opts
	}
	return out, nil
}

// lockRow locks the row for the rest of the transaction. When the schema has
// write hooks the current writable values are returned so hooks see the merged
// record.
func (s *TableService) lockRow(ctx context.Context, tx *sql.Tx, id int64) (map[string]interface{}, error) {
	if len(s.Schema.Hooks) == 0 {
		var found int64
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", s.Schema.Table), id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		if err != nil {
			return nil, s.storeError("Failed to fetch "+strings.ToLower(s.Schema.Entity), err)
		}
		return map[string]interface{}{}, nil
	}

	cols := s.Schema.writable()
	names := make([]string, len(cols))
	dests := make([]interface{}, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		dests[i] = scanDest(c.Kind)
	}
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ? FOR UPDATE", strings.Join(names, ", "), s.Schema.Table), id).
		Scan(dests...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.notFound()
	}
	if err != nil {
		return nil, s.storeError("Failed to fetch "+strings.ToLower(s.Schema.Entity), err)
	}

	current := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		v := scannedValue(c.Kind, dests[i])
		// TIME columns come back as text; keep them in bound-value form.
		if str, ok := v.(string); ok && c.Kind == KindTime {
			if norm, err := parseValue(KindTime, str); err == nil {
				v = norm
			}
		}
		current[c.Name] = v
	}
	return current, nil
}

// checkReferences verifies every referenced parent row exists and share-locks
// it so it cannot disappear before commit.
func (s *TableService) checkReferences(ctx context.Context, tx *sql.Tx, values map[string]interface{}) error {
	for _, ref := range s.Schema.References {
		v, ok := values[ref.Column]
		if !ok || v == nil {
			continue
		}
		var found int64
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT id FROM %s WHERE id = ? LOCK IN SHARE MODE", ref.Table), v).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.Validation("Selected %s does not exist", strings.ToLower(ref.Label))
		}
		if err != nil {
			return s.storeError("Failed to check "+strings.ToLower(ref.Label), err)
		}
	}
	return nil
}

func (s *TableService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return s.storeError("Failed to start transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return s.storeError("Failed to commit", err)
	}
	return nil
}

func (s *TableService) notFound() error {
	return apperror.NotFound("%s not found", s.Schema.Entity)
}

// writeError classifies constraint violations raised by the server itself.
func (s *TableService) writeError(msg string, err error) error {
	switch {
	case mariadb.IsDuplicateEntry(err):
		return apperror.Conflict("A %s with the same unique value already exists", strings.ToLower(s.Schema.Entity))
	case mariadb.IsRowReferenced(err):
		return apperror.Conflict("%s is still referenced by other records", s.Schema.Entity)
	case mariadb.IsMissingParent(err):
		return apperror.Validation("A referenced record does not exist")
	}
	return s.storeError(msg, err)
}

func (s *TableService) storeError(msg string, err error) error {
	return apperror.Store(msg, err)
}
