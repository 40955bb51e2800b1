package user

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// rolesColumn aggregates a user's roles into a JSON array.
const rolesColumn = `COALESCE(
	(
		SELECT json_agg(json_build_object('id', ar.id, 'name', ar.name) ORDER BY ar.name)
		FROM public.user_roles aur
		JOIN public.roles ar ON aur.role_id = ar.id
		WHERE aur.user_id = u.id
	),
	'[]'::json
) AS roles`

var userColumns = []string{
	"u.id",
	"u.username",
	"u.email",
	"u.password_hash",
	"u.status",
	"u.created_at",
	rolesColumn,
}

var sortColumns = map[string]string{
	SortByUsername:  "u.username",
	SortByEmail:     "u.email",
	SortByCreatedAt: "u.created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyFilter adds the joins and WHERE conditions of f to b.
// Each fan-out predicate gets its own join aliases so several of them can be
// combined without constraining the same joined row.
func applyFilter(b squirrel.SelectBuilder, f Filter) (squirrel.SelectBuilder, error) {
	where := squirrel.And{}
	for i, p := range f.Predicates {
		switch p.Kind {
		case KindUsernameContains:
			where = append(where, squirrel.ILike{"u.username": "%" + likeEscaper.Replace(p.Value) + "%"})
		case KindEmailEquals:
			where = append(where, squirrel.Expr("lower(u.email) = lower(?)", p.Value))
		case KindRoleNameEquals:
			ur, r := fmt.Sprintf("ur%d", i), fmt.Sprintf("r%d", i)
			b = b.
				Join(fmt.Sprintf("public.user_roles %s ON %s.user_id = u.id", ur, ur)).
				Join(fmt.Sprintf("public.roles %s ON %s.role_id = %s.id", r, ur, r))
			where = append(where, squirrel.Expr(fmt.Sprintf("lower(%s.name) = lower(?)", r), p.Value))
		default:
			return b, fmt.Errorf("unsupported predicate %s", p.Kind)
		}
	}
	if len(where) > 0 {
		b = b.Where(where)
	}
	return b, nil
}

// buildCountQuery counts the users matching f. Fan-out joins are counted by
// distinct identity.
func buildCountQuery(f Filter) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	column := "count(*)"
	if f.RequiresDistinct {
		column = "count(DISTINCT u.id)"
	}

	b, err := applyFilter(psql.Select(column).From("public.users u"), f)
	if err != nil {
		return "", nil, err
	}
	return b.ToSql()
}

// buildPageQuery selects one sorted page of the users matching f.
// When f requires distinct rows, the filter runs in an id subquery so the outer
// query sees each user once before sorting and slicing.
func buildPageQuery(f Filter, page PageRequest) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b := psql.Select(userColumns...).From("public.users u")

	var err error
	if f.RequiresDistinct {
		ids, err := applyFilter(squirrel.Select("u.id").From("public.users u"), f)
		if err != nil {
			return "", nil, err
		}
		b = b.Where(squirrel.Expr("u.id IN (?)", ids))
	} else {
		b, err = applyFilter(b, f)
		if err != nil {
			return "", nil, err
		}
	}

	column, ok := sortColumns[page.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidPageRequest, page.SortBy)
	}

	b = b.OrderBy(column+" "+page.SortOrder, "u.id ASC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))

	return b.ToSql()
}
