package models

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContainerStatus(t *testing.T) {
	st, err := ParseContainerStatus("in transit")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, st)

	_, err = ParseContainerStatus("Lost")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestParseSettingKind(t *testing.T) {
	k, err := ParseSettingKind("Types")
	require.NoError(t, err)
	assert.Equal(t, SettingTypes, k)

	_, err = ParseSettingKind("ports")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUserJSON_HidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Email: "a@b.c", PasswordHash: "secret", Role: RoleStaff})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "last_login")
}
