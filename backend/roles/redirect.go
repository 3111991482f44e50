package roles

import (
	"net/url"
	"strings"
)

// Error markers carried in the sign-in page query string.
const (
	ErrUnauthorizedAccess = "unauthorized_access"
	ErrNoRole             = "no_role"
)

const signInPath = "/auth"

// Paths from which an authenticated user is automatically moved to their
// dashboard. Any other path is left alone even when the role does not match
// it. /company-dashboard and /producer-login are legacy aliases.
var entryPaths = map[string]bool{
	"/":                  true,
	signInPath:           true,
	"/producer-login":    true,
	"/company-dashboard": true,
}

// Prefixes that only their owning role may navigate under.
var restrictedPrefixes = []Role{Producer, Company}

// State is a snapshot of the session at redirect-evaluation time.
//
// The evaluation is only meaningful once the session has fully settled:
// Loading covers the initial session fetch, and PasswordChangePending gates
// evaluation until a forced password change has completed, so the password
// dialog and the redirect never compete over navigation.
type State struct {
	Path                  string
	Query                 url.Values
	Authenticated         bool
	Role                  Role // Unknown when role resolution failed
	Loading               bool
	PasswordChangePending bool
}

// Decision is the single outcome of one evaluation: stay put, or navigate
// once to Target.
type Decision struct {
	Navigate bool
	Target   string
}

func stay() Decision {
	return Decision{}
}

func navigate(target string) Decision {
	return Decision{Navigate: true, Target: target}
}

// Resolve decides whether the user should be moved elsewhere. Evaluating the
// same State twice never produces two navigations: every target Resolve
// emits resolves to stay() on re-evaluation.
func Resolve(s State) Decision {
	if s.Loading || !s.Authenticated || s.PasswordChangePending {
		return stay()
	}

	role := s.Role.Normalize()

	// Role-restricted subtrees block cross-role navigation outright.
	for _, owner := range restrictedPrefixes {
		if !underPrefix(s.Path, owner.PathPrefix()) {
			continue
		}
		if role == owner {
			return stay()
		}
		if role == Unknown {
			return navigate(signInURL(ErrUnauthorizedAccess))
		}
		return navigate(role.DashboardPath())
	}

	// Students own /student the same way; staying there is fine and no
	// redirect is issued for other roles (it is not an entry path).
	if underPrefix(s.Path, Student.PathPrefix()) && role == Student {
		return stay()
	}

	if !entryPaths[s.Path] {
		return stay()
	}

	// The sign-in page may carry a requested role (?role=producer). The
	// authenticated user's actual role always wins over the request.
	if role != Unknown {
		return navigate(role.DashboardPath())
	}

	// Role resolution failed. A pending role request on the sign-in page is
	// left alone until the role settles; otherwise land on sign-in with the
	// marker, once.
	if s.Path == signInPath {
		if s.Query.Get("role") != "" || s.Query.Get("error") == ErrNoRole {
			return stay()
		}
	}
	return navigate(signInURL(ErrNoRole))
}

func signInURL(errMarker string) string {
	q := url.Values{}
	q.Set("error", errMarker)
	return signInPath + "?" + q.Encode()
}

// underPrefix reports whether path sits inside the prefix subtree. The match
// is segment-aware: /company-dashboard is not under /company.
func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
