// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	chttp "brokerage-portal/internal/common/http"
)

// ErrInvalidToken is returned when the identity provider rejects a token.
var ErrInvalidToken = stderrors.New("access token rejected by identity provider")

// ErrUserNotFound is returned by GetUser for unknown IDs.
var ErrUserNotFound = stderrors.New("user not found")

// KeycloakClient resolves access tokens and looks up realm users.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *chttp.Client

	mu          sync.Mutex
	adminToken  string
	tokenExpiry time.Time
}

// User is a realm user as returned by the admin API.
type User struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Enabled   bool   `json:"enabled"`
}

// UserInfo is the OpenID Connect userinfo payload.
type UserInfo struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return NewKeycloakClientWithHTTP(baseURL, realm, clientID, clientSecret, chttp.NewClient(30*time.Second))
}

func NewKeycloakClientWithHTTP(baseURL, realm, clientID, clientSecret string, client *chttp.Client) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         client,
	}
}

// UserInfo resolves accessToken against the realm's userinfo endpoint.
func (k *KeycloakClient) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/userinfo", k.baseURL, k.realm)

	var info UserInfo
	_, err := k.http.DoJSON(ctx, http.MethodGet, endpoint, map[string]string{
		"Authorization": "Bearer " + accessToken,
	}, nil, &info)
	if err != nil {
		var se *chttp.StatusError
		if stderrors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("keycloak userinfo: %w", err)
	}
	return &info, nil
}

// GetUser fetches a user by ID through the admin API.
func (k *KeycloakClient) GetUser(ctx context.Context, userID string) (*User, error) {
	token, err := k.serviceToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s/users/%s", k.baseURL, k.realm, url.PathEscape(userID))

	var user User
	_, err = k.http.DoJSON(ctx, http.MethodGet, endpoint, map[string]string{
		"Authorization": "Bearer " + token,
	}, nil, &user)
	if err != nil {
		var se *chttp.StatusError
		if stderrors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("keycloak get user: %w", err)
	}
	return &user, nil
}

// serviceToken returns a cached client-credentials token, refreshing it
// 30 seconds before expiry.
func (k *KeycloakClient) serviceToken(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.adminToken != "" && time.Now().Before(k.tokenExpiry) {
		return k.adminToken, nil
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("keycloak token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	k.adminToken = tr.AccessToken
	k.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 30*time.Second)
	return k.adminToken, nil
}
