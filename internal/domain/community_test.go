package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommunity_Hostnames(t *testing.T) {
	c := &Community{Subdomain: "demo"}
	assert.Equal(t, []string{"demo.gatherly.app"}, c.Hostnames("gatherly.app"))

	c.CustomDomain = "example.com"
	assert.Equal(t, []string{"demo.gatherly.app", "example.com"}, c.Hostnames("gatherly.app"))
}

func TestCommunity_OwnedBy(t *testing.T) {
	c := &Community{UserID: "user-1"}

	assert.True(t, c.OwnedBy("user-1"))
	assert.False(t, c.OwnedBy("user-2"))
	assert.False(t, c.OwnedBy(""))
	assert.False(t, (&Community{}).OwnedBy(""))
}

func TestParsePublished(t *testing.T) {
	assert.True(t, ParsePublished("true"))
	assert.False(t, ParsePublished("false"))
	assert.False(t, ParsePublished("TRUE"))
	assert.False(t, ParsePublished("1"))
	assert.False(t, ParsePublished(""))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", (&User{Name: "Ada", Username: "ada"}).DisplayName())
	assert.Equal(t, "ada", (&User{Username: "ada"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&User{Email: "ada@example.com"}).DisplayName())
}
