// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/pkg/apiclient"
)

// apiStub is a minimal server speaking the API's envelope dialect. The
// access token it accepts is swappable, and every refresh mints a new one.
type apiStub struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	refreshCalls int32
	refreshDelay time.Duration
	mux          *http.ServeMux
}

func newAPIStub() *apiStub {
	stub := &apiStub{validAccess: "access-1", validRefresh: "refresh-1", mux: http.NewServeMux()}

	stub.mux.HandleFunc("POST /api/v1/users/login", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)
		if body["password"] != "s3cret" {
			writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid login credentials")
			return
		}
		stub.mu.Lock()
		defer stub.mu.Unlock()
		writeData(writer, http.StatusOK, map[string]any{
			"user":          map[string]string{"id": "u-1", "email": body["email"]},
			"access_token":  stub.validAccess,
			"refresh_token": stub.validRefresh,
			"token_type":    "Bearer",
			"expires_in":    900,
		})
	})

	stub.mux.HandleFunc("POST /api/v1/users/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&stub.refreshCalls, 1)
		if stub.refreshDelay > 0 {
			time.Sleep(stub.refreshDelay)
		}
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)

		stub.mu.Lock()
		defer stub.mu.Unlock()
		if body["refresh_token"] != stub.validRefresh {
			writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid refresh token")
			return
		}
		stub.validAccess = stub.validAccess + "r"
		writeData(writer, http.StatusOK, map[string]any{
			"access_token": stub.validAccess,
			"token_type":   "Bearer",
			"expires_in":   900,
		})
	})

	stub.mux.HandleFunc("GET /api/v1/users/profile", func(writer http.ResponseWriter, request *http.Request) {
		stub.mu.Lock()
		valid := "Bearer " + stub.validAccess
		stub.mu.Unlock()
		if request.Header.Get("Authorization") != valid {
			writeError(writer, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired")
			return
		}
		writeData(writer, http.StatusOK, map[string]string{"id": "u-1", "name": "Tai"})
	})

	return stub
}

func writeData(writer http.ResponseWriter, status int, data any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]any{"data": data})
}

func writeError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]string{"error": message, "code": code})
}

/*
TestClient_Login stores the issued pair and attaches it to later calls.
*/
func TestClient_Login(t *testing.T) {
	stub := newAPIStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	client := apiclient.NewUser(server.URL)

	session, err := client.Login(context.Background(), "tai@coursio.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(900), session.ExpiresIn)
	assert.Contains(t, string(session.Account), "u-1")

	var profile map[string]string
	err = client.Do(context.Background(), http.MethodGet, "/api/v1/users/profile", nil, &profile)
	require.NoError(t, err)
	assert.Equal(t, "Tai", profile["name"])
}

/*
TestClient_LoginRejected surfaces the server's error envelope as an
*APIError and leaves the store empty.
*/
func TestClient_LoginRejected(t *testing.T) {
	stub := newAPIStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	client := apiclient.NewUser(server.URL)

	_, err := client.Login(context.Background(), "tai@coursio.com", "wrong")
	require.Error(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)

	assert.Empty(t, client.TokenStore().Get().AccessToken)
}

/*
TestClient_RefreshAndRetry: when the access token goes stale the client
refreshes once and replays the request, invisibly to the caller.
*/
func TestClient_RefreshAndRetry(t *testing.T) {
	stub := newAPIStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	client := apiclient.NewUser(server.URL)
	_, err := client.Login(context.Background(), "tai@coursio.com", "s3cret")
	require.NoError(t, err)

	// Expire the client's access token server-side.
	stub.mu.Lock()
	stub.validAccess = "access-2"
	stub.mu.Unlock()

	var profile map[string]string
	err = client.Do(context.Background(), http.MethodGet, "/api/v1/users/profile", nil, &profile)
	require.NoError(t, err)
	assert.Equal(t, "Tai", profile["name"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.refreshCalls))

	// The refreshed access token was stored for subsequent calls.
	assert.Equal(t, "access-2r", client.TokenStore().Get().AccessToken)
}

/*
TestClient_RefreshFailure: a rejected refresh clears the stored pair and
returns ErrSessionExpired without retry loops.
*/
func TestClient_RefreshFailure(t *testing.T) {
	stub := newAPIStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	client := apiclient.NewUser(server.URL)
	_, err := client.Login(context.Background(), "tai@coursio.com", "s3cret")
	require.NoError(t, err)

	// Invalidate both tokens: the retry path has nothing left to work with.
	stub.mu.Lock()
	stub.validAccess = "rotated-away"
	stub.validRefresh = "rotated-away"
	stub.mu.Unlock()

	err = client.Do(context.Background(), http.MethodGet, "/api/v1/users/profile", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrSessionExpired)

	tokens := client.TokenStore().Get()
	assert.Empty(t, tokens.AccessToken)
	assert.Empty(t, tokens.RefreshToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.refreshCalls), "exactly one refresh attempt")
}

/*
TestClient_ConcurrentRefresh: N requests hitting an expired token at once
collapse onto a single refresh round-trip.
*/
func TestClient_ConcurrentRefresh(t *testing.T) {
	stub := newAPIStub()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	client := apiclient.NewUser(server.URL)
	_, err := client.Login(context.Background(), "tai@coursio.com", "s3cret")
	require.NoError(t, err)

	stub.mu.Lock()
	stub.validAccess = "access-2"
	stub.refreshDelay = 100 * time.Millisecond
	stub.mu.Unlock()

	// A start barrier plus the slow refresh handler makes the expiries
	// land inside one singleflight window.
	start := make(chan struct{})
	var group sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		group.Add(1)
		go func(i int) {
			defer group.Done()
			<-start
			errs[i] = client.Do(context.Background(), http.MethodGet, "/api/v1/users/profile", nil, nil)
		}(i)
	}
	close(start)
	group.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.refreshCalls), "concurrent expiries share one refresh")
}

/*
TestMemoryTokenStore_OnChange fires the hook on every mutation.
*/
func TestMemoryTokenStore_OnChange(t *testing.T) {
	store := apiclient.NewMemoryTokenStore()

	var observed []apiclient.Tokens
	store.OnChange = func(tokens apiclient.Tokens) {
		observed = append(observed, tokens)
	}

	store.Set(apiclient.Tokens{AccessToken: "a", RefreshToken: "r"})
	store.Clear()

	require.Len(t, observed, 2)
	assert.Equal(t, "a", observed[0].AccessToken)
	assert.Empty(t, observed[1].AccessToken)
}
