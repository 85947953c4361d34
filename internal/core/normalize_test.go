package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := Normalize(&Email{
		Subject: "SCHOLARSHIP Awarded",
		Body:    "Congratulations!",
		From:    "Awards <Awards@Example.EDU>",
	})

	assert.Equal(t, "scholarship awarded", n.Subject)
	assert.Equal(t, "congratulations!", n.Body)
	assert.Equal(t, "awards <awards@example.edu>", n.From)
	assert.Equal(t, "scholarship awarded congratulations!", n.Combined)
}

func TestNormalizeNil(t *testing.T) {
	assert.Equal(t, NormalizedEmail{}, Normalize(nil))
}
