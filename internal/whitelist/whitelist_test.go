package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsTrusted(t *testing.T) {
	checker := NewChecker([]string{" Cedarville.edu ", "osu.edu"}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"admissions@cedarville.edu", true},
		{"Admissions Office <admissions@CEDARVILLE.EDU>", true},
		{"registrar@osu.edu", true},
		{"outreach@other-college.edu", false},
		{"not-an-address", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, checker.IsTrusted(tt.from), tt.from)
	}
}

func TestIsTrustedEmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsTrusted("admissions@cedarville.edu"))
}
