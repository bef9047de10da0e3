package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAdminPermission_NilEnforcerIsUnavailable(t *testing.T) {
	var enforcer *PermissionEnforcer
	err := enforcer.CheckAdminPermission(context.Background(), "Bearer token", "")
	assert.Error(t, err)
}

func TestCheckAdminPermission_NoHeadersIsUnauthorized(t *testing.T) {
	enforcer := &PermissionEnforcer{}
	err := enforcer.CheckAdminPermission(context.Background(), "", "")
	assert.Error(t, err)
}

func TestExtractToken_BearerHeader(t *testing.T) {
	assert.Equal(t, "abc123", extractToken("Bearer abc123", ""))
}

func TestExtractToken_Cookie(t *testing.T) {
	assert.Equal(t, "abc123", extractToken("", "other=1; campwatch_admin_token=abc123; foo=bar"))
}

func TestExtractToken_Missing(t *testing.T) {
	assert.Equal(t, "", extractToken("", "unrelated=1"))
}
