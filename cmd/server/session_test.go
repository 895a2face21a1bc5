package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Hour)

	token := store.Create(42)
	assert.NotEmpty(t, token)

	userID, ok := store.Get(token)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)

	// Tokens are unique per session.
	other := store.Create(42)
	assert.NotEqual(t, token, other)

	store.Delete(token)
	_, ok = store.Get(token)
	assert.False(t, ok)

	// The other session is unaffected.
	_, ok = store.Get(other)
	assert.True(t, ok)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(-time.Second) // already expired

	token := store.Create(7)
	_, ok := store.Get(token)
	assert.False(t, ok)
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store := NewSessionStore(time.Hour)
	_, ok := store.Get("not-a-token")
	assert.False(t, ok)
}
