package controllers_test

import (
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, env *testEnv, token, path string, extra url.Values) (bool, string) {
	t.Helper()

	q := url.Values{}
	q.Set("path", path)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	resp, result := env.request(t, "GET", "/api/session/redirect?"+q.Encode(), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	target, _ := result["target"].(string)
	return result["navigate"].(bool), target
}

func TestRedirectAnonymousStaysPut(t *testing.T) {
	env := setupEnv(t)

	navigate, _ := resolve(t, env, "", "/producer/dashboard", nil)
	assert.False(t, navigate)
}

func TestRedirectCrossRole(t *testing.T) {
	env := setupEnv(t)
	companyToken, _ := env.register(t, "Acme", "owner@acme.test", "password123", "company")

	navigate, target := resolve(t, env, companyToken, "/producer/dashboard", nil)
	assert.True(t, navigate)
	assert.Equal(t, "/company/dashboard", target)

	// Already home: no loop.
	navigate, _ = resolve(t, env, companyToken, "/company/dashboard", nil)
	assert.False(t, navigate)
}

func TestRedirectEntryPathToDashboard(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")

	navigate, target := resolve(t, env, producerToken, "/", nil)
	assert.True(t, navigate)
	assert.Equal(t, "/producer/dashboard", target)
}

func TestRedirectGatedByPendingPasswordChange(t *testing.T) {
	env := setupEnv(t)
	companyToken, _ := env.register(t, "Acme", "owner@acme.test", "password123", "company")
	_, status := addCollaborator(t, env, companyToken, "Nina", "nina@acme.test")
	require.Equal(t, fiber.StatusCreated, status)
	collabToken := env.login(t, "nina@acme.test", "temporary1")

	// Pending password change parks the user wherever they are.
	navigate, _ := resolve(t, env, collabToken, "/auth", nil)
	assert.False(t, navigate)

	resp, _ := env.request(t, "POST", "/api/auth/password", collabToken, map[string]interface{}{
		"current_password": "temporary1",
		"new_password":     "chosenbynina",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Cleared: the collaborator routes like a student.
	navigate, target := resolve(t, env, collabToken, "/auth", nil)
	assert.True(t, navigate)
	assert.Equal(t, "/student/courses", target)
}

func TestRedirectRoleRequestLosesToActualRole(t *testing.T) {
	env := setupEnv(t)
	companyToken, _ := env.register(t, "Acme", "owner@acme.test", "password123", "company")

	navigate, target := resolve(t, env, companyToken, "/auth", url.Values{"role": {"producer"}})
	assert.True(t, navigate)
	assert.Equal(t, "/company/dashboard", target)
}
