package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Role
		ok   bool
	}{
		{"producer", Producer, true},
		{"company", Company, true},
		{"student", Student, true},
		{"collaborator", Collaborator, true},
		{"admin", Unknown, false},
		{"", Unknown, false},
	} {
		got, ok := Parse(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestNormalizeCollaboratorRoutesAsStudent(t *testing.T) {
	assert.Equal(t, Student, Collaborator.Normalize())
	assert.Equal(t, Student, Student.Normalize())
	assert.Equal(t, Producer, Producer.Normalize())
	assert.Equal(t, Company, Company.Normalize())

	assert.Equal(t, "/student/courses", Collaborator.DashboardPath())
	assert.Equal(t, "/student", Collaborator.PathPrefix())
}
