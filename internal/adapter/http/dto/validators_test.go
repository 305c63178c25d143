package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct(t *testing.T) {
	req := RegisterRequest{
		Username:    "  alice  ",
		Password:    "hunter2!",
		DisplayName: "<script>alert(1)</script>",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "hunter2!", req.Password)
	assert.NotContains(t, req.DisplayName, "<script>")
}

func TestSanitizeStruct_EmbeddedListing(t *testing.T) {
	req := SaveArtworkRequest{
		Title:       "  Neon Garden  ",
		Description: "a <b>bold</b> piece",
	}
	req.Price = 10000
	SanitizeStruct(&req)

	assert.Equal(t, "Neon Garden", req.Title)
	assert.NotContains(t, req.Description, "<b>")
	assert.Equal(t, int64(10000), req.Price)
}

func TestSanitizeStruct_NonPointerIsNoop(t *testing.T) {
	req := LoginRequest{Username: "  bob  "}
	SanitizeStruct(req)
	assert.Equal(t, "  bob  ", req.Username)
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, usernameRe.MatchString("alice_01"))
	assert.True(t, usernameRe.MatchString("a.b-c"))
	assert.False(t, usernameRe.MatchString("alice bob"))
	assert.False(t, usernameRe.MatchString("alice<script>"))
}
