package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL_UpdatesNonConflictColumns(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "profiles",
		Columns:      []string{"user_id", "profile", "updated_at"},
		ConflictKeys: []string{"user_id"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "profiles" ("user_id", "profile", "updated_at") VALUES ($1, $2, $3) `+
			`ON CONFLICT ("user_id") DO UPDATE SET "profile" = EXCLUDED."profile", "updated_at" = EXCLUDED."updated_at"`,
		got)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "public.users",
		Columns:      []string{"id", "email", "name", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"email", "name", "updated_at"},
	})
	require.NoError(t, err)
	assert.Contains(t, got, `INSERT INTO "public"."users"`)
	assert.Contains(t, got, `VALUES ($1, $2, $3, $4, $5)`)
	assert.NotContains(t, got, `"created_at" = EXCLUDED`)
}

func TestUpsertSQL_DoNothing(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "users",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`, got)
}

func TestUpsertSQL_NoColumns(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{
		Table:        "users",
		ConflictKeys: []string{"id"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestUpsertSQL_NoConflictKeys(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{
		Table:   "users",
		Columns: []string{"id", "name"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestMustUpsertSQL_Panics(t *testing.T) {
	assert.Panics(t, func() { MustUpsertSQL(UpsertConfig{Table: "users"}) })
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.plans", `"public"."plans"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
