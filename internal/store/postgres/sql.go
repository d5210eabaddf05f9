// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/store"
)

// arguments accumulates positional parameters.
type arguments struct {
	values []any
}

// add appends a value and returns its placeholder.
func (a *arguments) add(value any) string {
	a.values = append(a.values, value)
	return "$" + strconv.Itoa(len(a.values))
}

func ident(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

// table quotes a possibly schema-qualified table name.
func table(model entity.Model) string {
	return pgx.Identifier(strings.Split(model.Table, ".")).Sanitize()
}

func columns(model entity.Model) string {
	all := model.AllColumns()
	quoted := make([]string, len(all))
	for i, column := range all {
		quoted[i] = ident(column)
	}
	return strings.Join(quoted, ", ")
}

// whereClause renders the trashed scope, the conditions and the search term.
// It returns "" when nothing filters the rows.
func whereClause(model entity.Model, q store.Query, args *arguments) string {
	var parts []string

	if model.SoftDeletes {
		switch q.Trashed {
		case store.ExcludeTrashed:
			parts = append(parts, ident(entity.ColumnDeletedAt)+" IS NULL")
		case store.OnlyTrashed:
			parts = append(parts, ident(entity.ColumnDeletedAt)+" IS NOT NULL")
		}
	}

	for _, condition := range q.Conditions {
		parts = append(parts, conditionSQL(condition, args))
	}

	if q.Search != "" && len(q.SearchColumns) > 0 {
		placeholder := args.add(store.LikePattern(q.Search))
		ors := make([]string, len(q.SearchColumns))
		for i, column := range q.SearchColumns {
			ors[i] = ident(column) + "::text ILIKE " + placeholder + " ESCAPE '" + store.LikeEscape + "'"
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	if len(parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

func conditionSQL(condition store.Condition, args *arguments) string {
	column := ident(condition.Column)
	switch condition.Operator {
	case store.OpIsNull, store.OpNotNull:
		return column + " " + string(condition.Operator)
	case store.OpIn:
		values := store.InValues(condition.Value)
		if len(values) == 0 {
			return "FALSE"
		}
		placeholders := make([]string, len(values))
		for i, value := range values {
			placeholders[i] = args.add(value)
		}
		return column + " IN (" + strings.Join(placeholders, ", ") + ")"
	case store.OpLike:
		return column + "::text ILIKE " + args.add(condition.Value)
	default:
		return column + " " + string(condition.Operator) + " " + args.add(condition.Value)
	}
}

// orderClause renders the sorts, breaking ties on the primary key so pages
// never overlap.
func orderClause(model entity.Model, sorts []store.Sort) string {
	if len(sorts) == 0 {
		return " ORDER BY " + ident(model.KeyName())
	}
	parts := make([]string, 0, len(sorts)+1)
	keySorted := false
	for _, order := range sorts {
		direction := "ASC"
		if order.Descending {
			direction = "DESC"
		}
		parts = append(parts, ident(order.Column)+" "+direction)
		keySorted = keySorted || order.Column == model.KeyName()
	}
	if !keySorted {
		parts = append(parts, ident(model.KeyName()))
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
