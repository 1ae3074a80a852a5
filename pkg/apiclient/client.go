// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package apiclient is the Go client for the Coursio HTTP API.
//
// # Overview
//
// The client wraps [net/http.Client] with session management: it attaches
// the stored access token as a bearer credential, and when the server
// answers 401 with the TOKEN_EXPIRED code it transparently exchanges the
// refresh token for a new access token and replays the request exactly
// once. Concurrent requests that expire at the same moment share a single
// refresh round-trip via [singleflight.Group]; when the refresh itself is
// rejected the stored credentials are cleared and every waiter receives
// [ErrSessionExpired].
//
// A client is bound to one role namespace (/api/v1/admins or /api/v1/users)
// at construction, mirroring the server's disjoint admin and user account
// spaces.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// defaultTimeout bounds every request, including the refresh round-trip.
	defaultTimeout = 30 * time.Second

	// codeTokenExpired is the error code the server sends when the access
	// token is valid in form but past its expiry. Only this code triggers
	// the refresh-and-replay path; any other 401 is terminal.
	codeTokenExpired = "TOKEN_EXPIRED"

	namespaceAdmins = "admins"
	namespaceUsers  = "users"
)

// ErrSessionExpired is returned when the refresh token itself is rejected.
// The stored credentials have been cleared; the caller must log in again.
var ErrSessionExpired = errors.New("apiclient: session expired, log in again")

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string   `json:"code"`
	Message    string   `json:"error"`
	Details    []string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Session is the payload of a successful login or registration.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	// Account is the raw account object for the namespace's role, left
	// undecoded so both admin and user shapes pass through unchanged.
	Account json.RawMessage
}

// Client talks to one role namespace of the Coursio API.
type Client struct {
	baseURL    string
	namespace  string
	httpClient *http.Client
	store      TokenStore
	refresh    singleflight.Group
}

// Option customizes a [Client] at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying [http.Client], e.g. to install a
// custom transport or disable the default timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// WithTokenStore replaces the default in-memory [TokenStore].
func WithTokenStore(store TokenStore) Option {
	return func(client *Client) { client.store = store }
}

// NewAdmin creates a client bound to the /api/v1/admins namespace.
func NewAdmin(baseURL string, options ...Option) *Client {
	return newClient(baseURL, namespaceAdmins, options...)
}

// NewUser creates a client bound to the /api/v1/users namespace.
func NewUser(baseURL string, options ...Option) *Client {
	return newClient(baseURL, namespaceUsers, options...)
}

func newClient(baseURL, namespace string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		namespace:  namespace,
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      NewMemoryTokenStore(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// TokenStore exposes the store so callers can observe or seed credentials.
func (client *Client) TokenStore() TokenStore {
	return client.store
}

/*
Register creates an account in the client's namespace and stores the
returned session tokens.

Parameters:
  - context: Controls cancellation of the request.
  - name, email, password: Registration fields, validated server-side.

Returns:
  - *Session: The issued token pair and account payload.
  - error: An *APIError on rejection (e.g. duplicate email).
*/
func (client *Client) Register(context context.Context, name, email, password string) (*Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return client.startSession(context, "/register", body)
}

/*
Login authenticates against the client's namespace and stores the returned
session tokens.

Parameters:
  - context: Controls cancellation of the request.
  - email, password: Credentials for this namespace's role.

Returns:
  - *Session: The issued token pair and account payload.
  - error: An *APIError with a generic message on bad credentials.
*/
func (client *Client) Login(context context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return client.startSession(context, "/login", body)
}

// Logout discards the stored credentials. Purely client-side: the server
// keeps no session state to invalidate.
func (client *Client) Logout() {
	client.store.Clear()
}

func (client *Client) startSession(context context.Context, path string, body any) (*Session, error) {
	var payload map[string]json.RawMessage
	err := client.Do(context, http.MethodPost, "/api/v1/"+client.namespace+path, body, &payload)
	if err != nil {
		return nil, err
	}

	session := &Session{}
	decode := func(key string, out any) {
		if raw, ok := payload[key]; ok {
			_ = json.Unmarshal(raw, out)
		}
	}
	decode("access_token", &session.AccessToken)
	decode("refresh_token", &session.RefreshToken)
	decode("token_type", &session.TokenType)
	decode("expires_in", &session.ExpiresIn)

	// The account object sits under its role name ("admin" or "user").
	for key, raw := range payload {
		switch key {
		case "access_token", "refresh_token", "token_type", "expires_in":
		default:
			session.Account = raw
		}
	}

	client.store.Set(Tokens{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	return session, nil
}

/*
Do sends a JSON request and decodes the envelope's data field into out.

Description: The workhorse behind every typed call. It serializes body once
and keeps the bytes so the request can be replayed after a token refresh.
A 401 with the TOKEN_EXPIRED code triggers at most one refresh-then-retry;
all other failures surface as *APIError.

Parameters:
  - context: Controls cancellation and deadlines for the full exchange.
  - method, path: HTTP method and server path (e.g. "/api/v1/courses").
  - body: Request payload, marshaled as JSON; nil for no body.
  - out: Destination for the envelope's data field; nil to discard.

Returns:
  - error: nil on 2xx, *APIError on a server rejection, ErrSessionExpired
    when the refresh token is no longer accepted.
*/
func (client *Client) Do(context context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		payload = encoded
	}
	return client.do(context, method, path, payload, out, false)
}

func (client *Client) do(context context.Context, method, path string, payload []byte, out any, retried bool) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(context, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := client.store.Get().AccessToken; token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read response: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("apiclient: decode envelope: %w", err)
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("apiclient: decode data: %w", err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: response.StatusCode}
	if err := json.Unmarshal(raw, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	if response.StatusCode == http.StatusUnauthorized && apiErr.Code == codeTokenExpired && !retried {
		if err := client.refreshAccessToken(context); err != nil {
			return err
		}
		return client.do(context, method, path, payload, out, true)
	}

	return apiErr
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers collapse onto one in-flight exchange; each waiter
// observes the same outcome.
func (client *Client) refreshAccessToken(context context.Context) error {
	_, err, _ := client.refresh.Do("refresh", func() (any, error) {
		tokens := client.store.Get()
		if tokens.RefreshToken == "" {
			return nil, ErrSessionExpired
		}

		body, err := json.Marshal(map[string]string{"refresh_token": tokens.RefreshToken})
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode refresh request: %w", err)
		}

		path := client.baseURL + "/api/v1/" + client.namespace + "/refresh-token"
		request, err := http.NewRequestWithContext(context, http.MethodPost, path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("apiclient: build refresh request: %w", err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := client.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("apiclient: refresh token: %w", err)
		}
		defer response.Body.Close()

		raw, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: read refresh response: %w", err)
		}

		if response.StatusCode != http.StatusOK {
			// The long-lived credential was rejected. Nothing left to
			// retry with, so the session is over.
			client.store.Clear()
			return nil, ErrSessionExpired
		}

		var envelope struct {
			Data struct {
				AccessToken string `json:"access_token"`
			} `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data.AccessToken == "" {
			client.store.Clear()
			return nil, ErrSessionExpired
		}

		tokens.AccessToken = envelope.Data.AccessToken
		client.store.Set(tokens)
		return nil, nil
	})
	return err
}
