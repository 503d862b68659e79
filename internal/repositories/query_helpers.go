package repositories

import "fmt"

// Small builders shared by the list queries. Order columns always come
// from a per-repository whitelist, never from caller input.

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func orderClause(allowed map[string]string, requested, fallback string, desc bool) string {
	col, ok := allowed[requested]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func limitClause(args *[]any, limit, fallback int) string {
	if limit <= 0 {
		limit = fallback
	}
	*args = append(*args, limit)
	return " LIMIT " + placeholder(len(*args))
}
