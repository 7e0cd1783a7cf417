package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser(t *testing.T) {
	a := ForUser("user-abc")
	b := ForUser("user-abc")
	c := ForUser("user-xyz")

	assert.Regexp(t, hexColor, a)
	assert.Regexp(t, hexColor, c)
	assert.Equal(t, a, b, "same user always gets the same color")
	assert.NotEqual(t, a, c, "different users usually differ")
}

func TestForUser_EmptyID(t *testing.T) {
	assert.Regexp(t, hexColor, ForUser(""))
}
