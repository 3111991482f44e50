package roles

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedState(path string, role Role) State {
	return State{
		Path:          path,
		Query:         url.Values{},
		Authenticated: true,
		Role:          role,
	}
}

func TestResolveNoOpStates(t *testing.T) {
	loading := authedState("/", Company)
	loading.Loading = true
	assert.Equal(t, stay(), Resolve(loading))

	anonymous := State{Path: "/", Query: url.Values{}}
	assert.Equal(t, stay(), Resolve(anonymous))

	pending := authedState("/", Company)
	pending.PasswordChangePending = true
	assert.Equal(t, stay(), Resolve(pending))
}

func TestResolveCrossRoleNavigation(t *testing.T) {
	d := Resolve(authedState("/producer/dashboard", Company))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/company/dashboard", d.Target)

	d = Resolve(authedState("/company/collaborators", Producer))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/producer/dashboard", d.Target)

	d = Resolve(authedState("/producer/courses/42", Collaborator))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/student/courses", d.Target)
}

func TestResolveUnknownRoleOnRestrictedPath(t *testing.T) {
	d := Resolve(authedState("/producer/dashboard", Unknown))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/auth?error=unauthorized_access", d.Target)
}

func TestResolveStaysOnOwnSubtree(t *testing.T) {
	assert.Equal(t, stay(), Resolve(authedState("/producer/dashboard", Producer)))
	assert.Equal(t, stay(), Resolve(authedState("/company/dashboard", Company)))
	assert.Equal(t, stay(), Resolve(authedState("/student/courses", Student)))
	assert.Equal(t, stay(), Resolve(authedState("/student/courses", Collaborator)))
}

func TestResolveEntryPathsRedirectToDashboard(t *testing.T) {
	for _, path := range []string{"/", "/auth", "/producer-login", "/company-dashboard"} {
		d := Resolve(authedState(path, Producer))
		assert.True(t, d.Navigate, path)
		assert.Equal(t, "/producer/dashboard", d.Target, path)
	}
}

func TestResolveLeavesNonEntryPathsAlone(t *testing.T) {
	assert.Equal(t, stay(), Resolve(authedState("/about", Company)))
	assert.Equal(t, stay(), Resolve(authedState("/courses/12/lesson/3", Producer)))
}

func TestResolveCompanyDashboardAliasIsNotCompanySubtree(t *testing.T) {
	// Segment-aware prefix match: the legacy alias must redirect by entry
	// policy, not be mistaken for the /company subtree.
	d := Resolve(authedState("/company-dashboard", Student))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/student/courses", d.Target)
}

func TestResolveRoleRequestReconciliation(t *testing.T) {
	s := authedState("/auth", Company)
	s.Query.Set("role", "producer")
	d := Resolve(s)
	assert.True(t, d.Navigate)
	assert.Equal(t, "/company/dashboard", d.Target)

	// Role still unknown: stay on the sign-in page with the request pending.
	s = authedState("/auth", Unknown)
	s.Query.Set("role", "producer")
	assert.Equal(t, stay(), Resolve(s))
}

func TestResolveUnknownRoleRedirectsOnce(t *testing.T) {
	d := Resolve(authedState("/auth", Unknown))
	assert.True(t, d.Navigate)
	assert.Equal(t, "/auth?error=no_role", d.Target)

	// Re-evaluating at the navigation target produces no further move.
	target, err := url.Parse(d.Target)
	assert.NoError(t, err)
	s := authedState(target.Path, Unknown)
	s.Query = target.Query()
	assert.Equal(t, stay(), Resolve(s))
}
