package roles

// Role is the closed set of tenant roles a user can hold. A user has exactly
// one effective role at a time.
type Role int

const (
	Unknown Role = iota
	Producer
	Company
	Student
	Collaborator
)

func Parse(s string) (Role, bool) {
	switch s {
	case "producer":
		return Producer, true
	case "company":
		return Company, true
	case "student":
		return Student, true
	case "collaborator":
		return Collaborator, true
	}
	return Unknown, false
}

func (r Role) String() string {
	switch r {
	case Producer:
		return "producer"
	case Company:
		return "company"
	case Student:
		return "student"
	case Collaborator:
		return "collaborator"
	}
	return "unknown"
}

// Normalize maps Collaborator to Student: collaborators are routed exactly
// like students everywhere in the app.
func (r Role) Normalize() Role {
	if r == Collaborator {
		return Student
	}
	return r
}

// DashboardPath is the landing page for the role.
func (r Role) DashboardPath() string {
	switch r.Normalize() {
	case Producer:
		return "/producer/dashboard"
	case Company:
		return "/company/dashboard"
	case Student:
		return "/student/courses"
	}
	return ""
}

// PathPrefix is the route subtree owned by the role.
func (r Role) PathPrefix() string {
	switch r.Normalize() {
	case Producer:
		return "/producer"
	case Company:
		return "/company"
	case Student:
		return "/student"
	}
	return ""
}
