package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderClauseWhitelist(t *testing.T) {
	allowed := map[string]string{
		"unit_number": "unit_number",
		"status":      "status",
	}

	require.Equal(t, " ORDER BY status ASC", orderClause(allowed, "status", "unit_number", false))
	require.Equal(t, " ORDER BY unit_number DESC", orderClause(allowed, "unit_number", "unit_number", true))

	// anything off the whitelist falls back, it never reaches the SQL
	require.Equal(t, " ORDER BY unit_number ASC", orderClause(allowed, "1; DROP TABLE units", "unit_number", false))
	require.Equal(t, " ORDER BY unit_number ASC", orderClause(allowed, "", "unit_number", false))
}

func TestLimitClause(t *testing.T) {
	args := []any{"Ready"}
	clause := limitClause(&args, 25, 50)
	require.Equal(t, " LIMIT $2", clause)
	require.Equal(t, []any{"Ready", 25}, args)

	args = []any{}
	clause = limitClause(&args, 0, 50)
	require.Equal(t, " LIMIT $1", clause)
	require.Equal(t, []any{50}, args, "non-positive limits take the fallback")
}
