package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
)

func adminUser() *auth.UserSession {
	return &auth.UserSession{ID: "admin-1", ProfileID: constants.ProfileSystemAdmin}
}

func standardUser() *auth.UserSession {
	return &auth.UserSession{ID: "user-7", ProfileID: constants.ProfileStandard}
}

func TestValidatorAllowsSelectOnAllowlistedTable(t *testing.T) {
	v := NewSecurityValidator()

	out, err := v.ValidateAndRewrite("SELECT stage, COUNT(*) FROM deals GROUP BY stage", adminUser())
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "deals")
	// Admins get no owner filter
	assert.NotContains(t, strings.ToLower(out), "owner_id")
}

func TestValidatorRejectsNonSelect(t *testing.T) {
	v := NewSecurityValidator()

	cases := []string{
		"DELETE FROM leads",
		"UPDATE leads SET score = 100",
		"INSERT INTO leads (id) VALUES ('x')",
		"DROP TABLE leads",
	}
	for _, sql := range cases {
		_, err := v.ValidateAndRewrite(sql, adminUser())
		assert.Error(t, err, sql)
	}
}

func TestValidatorRejectsMultipleStatements(t *testing.T) {
	v := NewSecurityValidator()

	_, err := v.ValidateAndRewrite("SELECT 1 FROM leads; SELECT 2 FROM deals", adminUser())
	require.Error(t, err)
}

func TestValidatorRejectsTablesOutsideAllowlist(t *testing.T) {
	v := NewSecurityValidator()

	_, err := v.ValidateAndRewrite("SELECT password FROM users", adminUser())
	require.Error(t, err)

	_, err = v.ValidateAndRewrite("SELECT id FROM sessions", adminUser())
	require.Error(t, err)
}

func TestValidatorRejectsAllowlistBypassViaSubquery(t *testing.T) {
	v := NewSecurityValidator()

	_, err := v.ValidateAndRewrite(
		"SELECT * FROM leads WHERE owner_id IN (SELECT id FROM users)", adminUser())
	require.Error(t, err)
}

func TestValidatorInjectsOwnerFilterForStandardUser(t *testing.T) {
	v := NewSecurityValidator()

	out, err := v.ValidateAndRewrite("SELECT name FROM leads", standardUser())
	require.NoError(t, err)
	lower := strings.ToLower(out)
	assert.Contains(t, lower, "owner_id")
	assert.Contains(t, out, "user-7")
}

func TestValidatorAndsOwnerFilterWithExistingWhere(t *testing.T) {
	v := NewSecurityValidator()

	out, err := v.ValidateAndRewrite("SELECT name FROM leads WHERE status='qualified'", standardUser())
	require.NoError(t, err)
	lower := strings.ToLower(out)
	assert.Contains(t, lower, "qualified")
	assert.Contains(t, lower, "owner_id")
	assert.Contains(t, out, "user-7")
}

func TestValidatorQualifiesOwnerFilterAgainstFirstTable(t *testing.T) {
	v := NewSecurityValidator()

	// Joining two allowlisted tables: an unqualified owner_id would be
	// ambiguous, so the filter binds to the first FROM table's alias
	out, err := v.ValidateAndRewrite(
		"SELECT l.name, d.amount FROM leads l JOIN deals d ON d.contact_id = l.id", standardUser())
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "`l`.`owner_id`")
	assert.Contains(t, out, "user-7")

	// Single table, no alias: qualified by the table name
	out, err = v.ValidateAndRewrite("SELECT name FROM leads", standardUser())
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "`leads`.`owner_id`")
}

func TestValidatorRejectsUnparsableSQL(t *testing.T) {
	v := NewSecurityValidator()

	_, err := v.ValidateAndRewrite("SELEKT gibberish FRUM", adminUser())
	require.Error(t, err)
}
