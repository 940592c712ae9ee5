package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRestrictions(t *testing.T) {
	assert.Equal(t, []string{CapAdminLogs, CapUserManagement, CapRemoveLogs}, DefaultRestrictions(RoleUser))
	assert.Empty(t, DefaultRestrictions(RoleAdmin))
	assert.NotNil(t, DefaultRestrictions(RoleAdmin))

	// The returned slice is a copy
	r := DefaultRestrictions(RoleUser)
	r[0] = "changed"
	assert.Equal(t, CapAdminLogs, ProtectedCapabilities[0])
}

func TestAccountsUnmarshal(t *testing.T) {
	doc := `{
		"old": "hunter2",
		"boss": {"password": "pw", "role": "admin", "restrictions": []},
		"noperms": {"password": "pw", "role": "user"},
		"badperms": {"password": "pw", "role": "user", "restrictions": "all"},
		"nopassword": {"role": "user", "restrictions": []},
		"number": 42,
		"list": ["a"],
		"nothing": null
	}`

	var accounts Accounts
	require.NoError(t, json.Unmarshal([]byte(doc), &accounts))
	require.Len(t, accounts, 8)

	assert.Equal(t, &LegacyAccount{Password: "hunter2"}, accounts["old"])
	assert.Equal(t, &ModernAccount{Password: "pw", Role: RoleAdmin, Restrictions: []string{}}, accounts["boss"])

	noperms, ok := accounts["noperms"].(*ModernAccount)
	require.True(t, ok)
	assert.True(t, noperms.RestrictionsMissing)

	badperms, ok := accounts["badperms"].(*ModernAccount)
	require.True(t, ok)
	assert.True(t, badperms.RestrictionsMissing)

	nopassword, ok := accounts["nopassword"].(*ModernAccount)
	require.True(t, ok)
	assert.True(t, nopassword.PasswordMissing)
	assert.False(t, nopassword.RestrictionsMissing)

	for _, name := range []string{"number", "list", "nothing"} {
		assert.IsType(t, &UnknownAccount{}, accounts[name], name)
	}
}

func TestAccountsUnmarshalRejectsNonObject(t *testing.T) {
	for _, doc := range []string{`null`, `[]`, `"admin"`, `{`} {
		var accounts Accounts
		assert.Error(t, json.Unmarshal([]byte(doc), &accounts), doc)
	}
}

func TestAccountsRoundTrip(t *testing.T) {
	doc := `{"boss":{"password":"pw","role":"admin","restrictions":[]},` +
		`"list":["a"],"noperms":{"password":"pw","role":"user"},"nothing":null,"old":"hunter2"}`

	var accounts Accounts
	require.NoError(t, json.Unmarshal([]byte(doc), &accounts))

	out, err := json.Marshal(accounts)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
}

func TestDefaultAccounts(t *testing.T) {
	accounts := DefaultAccounts()
	require.Len(t, accounts, 2)

	admin, ok := accounts["admin"].(*ModernAccount)
	require.True(t, ok)
	assert.Equal(t, "password123", admin.Password)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Empty(t, admin.Restrictions)

	analyst, ok := accounts["analyst"].(*ModernAccount)
	require.True(t, ok)
	assert.Equal(t, "secure456", analyst.Password)
	assert.Equal(t, RoleUser, analyst.Role)
	assert.ElementsMatch(t, ProtectedCapabilities, analyst.Restrictions)

	data, err := json.Marshal(accounts)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"admin": {"password": "password123", "role": "admin", "restrictions": []},
		"analyst": {"password": "secure456", "role": "user", "restrictions": ["admin_logs", "user_management", "remove_logs"]}
	}`, string(data))
}
