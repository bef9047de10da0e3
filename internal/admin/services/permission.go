package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/danielgtaylor/huma/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// rbacModel is a plain RBAC-with-roles Casbin model: a subject is granted
// a role via a grouping policy, and a role is granted resource.action
// pairs directly. Campwatch has no character/corporation/alliance
// hierarchy to enforce, so this drops the teacher's domain-scoped,
// multi-level matcher down to the two levels operators actually need.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// PermissionEnforcer authorizes admin requests: it validates the caller's
// operator token, then checks the resulting role against a Casbin enforcer
// whose policies persist to MongoDB, grounded on
// pkg/middleware/casbin_auth.go's enforcer setup (casbin.Enforcer over a
// mongodb-adapter) but without the EVE hierarchy it never needs.
type PermissionEnforcer struct {
	enforcer  *casbin.Enforcer
	validator *AdminJWTValidator
}

// NewPermissionEnforcer builds a Casbin enforcer backed by the
// "casbin_policies" collection and seeds the default operator/super-operator
// roles the admin surface checks against.
func NewPermissionEnforcer(mongoClient *mongo.Client, dbName string, validator *AdminJWTValidator) (*PermissionEnforcer, error) {
	adapter, err := mongodbadapter.NewAdapterByDB(mongoClient, &mongodbadapter.AdapterConfig{
		DatabaseName:   dbName,
		CollectionName: "casbin_policies",
	})
	if err != nil {
		return nil, fmt.Errorf("create casbin mongodb adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load casbin policies: %w", err)
	}

	pe := &PermissionEnforcer{enforcer: enforcer, validator: validator}
	if err := pe.seedDefaultRoles(); err != nil {
		return nil, err
	}
	return pe, nil
}

func (p *PermissionEnforcer) seedDefaultRoles() error {
	policies := [][4]string{
		{"role:admin", "activity", "admin", "allow"},
		{"role:admin", "system", "super_admin", "allow"},
		{"role:super_admin", "system", "super_admin", "allow"},
	}
	for _, policy := range policies {
		if _, err := p.enforcer.AddPolicy(policy[0], policy[1], policy[2], policy[3]); err != nil {
			return fmt.Errorf("seed policy %v: %w", policy, err)
		}
	}
	return nil
}

// CheckAdminPermission requires activity.admin, falling back to
// system.super_admin, the same two-tier check
// internal/scheduler/routes.checkSchedulerAdminPermission ran for its own
// protected endpoints.
func (p *PermissionEnforcer) CheckAdminPermission(ctx context.Context, authHeader, cookieHeader string) error {
	if err := p.checkPermission(ctx, authHeader, cookieHeader, "activity", "admin"); err == nil {
		return nil
	}
	if err := p.checkPermission(ctx, authHeader, cookieHeader, "system", "super_admin"); err != nil {
		var se huma.StatusError
		if errors.As(err, &se) && se.GetStatus() != http.StatusForbidden {
			return err
		}
		return huma.Error403Forbidden("permission denied - requires activity.admin or system.super_admin")
	}
	return nil
}

func (p *PermissionEnforcer) checkPermission(ctx context.Context, authHeader, cookieHeader, resource, action string) error {
	if p == nil {
		return huma.Error503ServiceUnavailable("authentication system not available")
	}

	token := extractToken(authHeader, cookieHeader)
	if token == "" {
		return huma.Error401Unauthorized("authentication required - provide Authorization header or campwatch_admin_token cookie")
	}

	identity, err := p.validator.ValidateJWT(token)
	if err != nil {
		return huma.Error401Unauthorized("authentication failed")
	}

	subject := "role:" + identity.Role
	allowed, err := p.enforcer.Enforce(subject, resource, action)
	if err != nil {
		return huma.Error500InternalServerError("authentication system error")
	}
	if !allowed {
		return huma.Error403Forbidden("permission denied - requires " + resource + "." + action)
	}
	return nil
}

func extractToken(authHeader, cookieHeader string) string {
	if authHeader != "" {
		if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return after
		}
	}
	for _, pair := range strings.Split(cookieHeader, ";") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 && parts[0] == "campwatch_admin_token" {
			return parts[1]
		}
	}
	return ""
}
