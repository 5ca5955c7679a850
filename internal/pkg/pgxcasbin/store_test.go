package pgxcasbin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_SQL(t *testing.T) {
	s := newStore(nil, "CasbinRule")

	assert.Equal(t, "casbin_rule", s.table)
	assert.Equal(t,
		"INSERT INTO casbin_rule (ptype, v0, v1, v2, v3, v4, v5) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING",
		s.insertSQL)
	assert.Equal(t,
		"DELETE FROM casbin_rule WHERE ptype = $1 AND v0 = $2 AND v1 = $3 AND v2 = $4 AND v3 = $5 AND v4 = $6 AND v5 = $7",
		s.deleteSQL)
}

func TestRuleArgs(t *testing.T) {
	t.Run("pads to field count", func(t *testing.T) {
		args, err := ruleArgs("p", []string{"admin", "/otp/settings", "PUT"})

		require.NoError(t, err)
		assert.Equal(t, []any{"p", "admin", "/otp/settings", "PUT", "", "", ""}, args)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := ruleArgs("p", []string{"1", "2", "3", "4", "5", "6", "7"})

		assert.ErrorIs(t, err, ErrRuleTooLong)
	})
}

func TestTrimTrailingEmpty(t *testing.T) {
	assert.Equal(t, []string{"p", "admin", "/x", "GET"}, trimTrailingEmpty([]string{"p", "admin", "/x", "GET", "", "", ""}))
	assert.Equal(t, []string{"g", "", "admin"}, trimTrailingEmpty([]string{"g", "", "admin", "", "", "", ""}))
	assert.Empty(t, trimTrailingEmpty([]string{"", ""}))
}

func TestStore_DeleteWhere_Validation(t *testing.T) {
	s := newStore(nil, defaultTableName)

	assert.ErrorIs(t, s.deleteWhere(t.Context(), "", 0, "admin"), ErrEmptyPtype)
	assert.ErrorIs(t, s.deleteWhere(t.Context(), "p", 4, "a", "b", "c"), ErrArgsTooLong)
}
