// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import "sync"

// Tokens is the credential pair held by a [TokenStore].
//
// AccessToken is short-lived and attached to every request as a bearer
// credential. RefreshToken is long-lived and only ever sent to the
// refresh-token endpoint.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// TokenStore abstracts where the session credentials live, so callers can
// plug in persistent storage (keychain, encrypted file) without changing
// the client.
type TokenStore interface {
	// Get returns the current token pair. Empty fields mean "not logged in".
	Get() Tokens
	// Set replaces the current token pair.
	Set(tokens Tokens)
	// Clear wipes the stored pair, ending the session.
	Clear()
}

// MemoryTokenStore is an in-process [TokenStore] safe for concurrent use.
//
// OnChange, when set, is invoked after every Set and Clear with the new
// state. It runs on the caller's goroutine while no internal lock is held,
// so implementations may call back into the store.
type MemoryTokenStore struct {
	mu       sync.RWMutex
	tokens   Tokens
	OnChange func(Tokens)
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Get returns the current token pair.
func (store *MemoryTokenStore) Get() Tokens {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.tokens
}

// Set replaces the stored pair and fires OnChange.
func (store *MemoryTokenStore) Set(tokens Tokens) {
	store.mu.Lock()
	store.tokens = tokens
	hook := store.OnChange
	store.mu.Unlock()

	if hook != nil {
		hook(tokens)
	}
}

// Clear wipes the stored pair and fires OnChange with zero-value tokens.
func (store *MemoryTokenStore) Clear() {
	store.Set(Tokens{})
}
