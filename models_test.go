package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "foobar@test.com", "foobar@test.com"},
		{"mixed case", "FooBar@Test.Com", "foobar@test.com"},
		{"surrounding whitespace", "  foobar@test.com \t", "foobar@test.com"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, accounts.NormalizeEmail(tc.input))
		})
	}
}

func TestHasAvatar(t *testing.T) {
	var missing *accounts.User
	assert.False(t, missing.HasAvatar())

	assert.False(t, (&accounts.User{}).HasAvatar())
	assert.True(t, (&accounts.User{Avatar: []byte{1}}).HasAvatar())
}
