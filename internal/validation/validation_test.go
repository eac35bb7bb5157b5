package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{"plain", "reviewer", true},
		{"with symbols", "john.doe+1@x-y_z", true},
		{"reserved", "me", false},
		{"reserved upper case", "ME", false},
		{"space", "john doe", false},
		{"trailing bang", "bob!", false},
		{"empty", "", false},
		{"slash", "a/b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidUsername(tt.username))
		})
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("someone@example.com", "required,email,max=254"))
	assert.Error(t, Var("not-an-email", "required,email,max=254"))
	assert.NoError(t, Var("sci-fi_2", "slug"))
	assert.Error(t, Var("sci fi", "slug"))
	assert.NoError(t, Var("moderator", "role"))
	assert.Error(t, Var("root", "role"))
	assert.Error(t, Var("me", "username"))
}
