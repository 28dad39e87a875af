package yggdrasil

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Mojang's authentication agent. Version 1 is the only one that ever
// existed.
const (
	agentName    = "Minecraft"
	agentVersion = 1
)

var errNoSession = errors.New("session is nil")

// GameProfile identifies a player. Profiles returned by LookupProfile
// additionally carry properties such as textures.
type GameProfile struct {
	// ID is the player UUID in its dashless hex form.
	ID string `json:"id"`
	// Name is the player name.
	Name string `json:"name"`
	// Properties holds signed profile attributes.
	Properties []Property `json:"properties,omitempty"`
}

// Property is one signed profile attribute.
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// User is the account document behind a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session is the authentication state of one user. It is what gets
// persisted between launcher runs.
type Session struct {
	AccessToken       string        `json:"accessToken"`
	ClientToken       string        `json:"clientToken"`
	SelectedProfile   GameProfile   `json:"selectedProfile"`
	AvailableProfiles []GameProfile `json:"availableProfiles,omitempty"`
	User              *User         `json:"user,omitempty"`
}

// Credentials are what Login sends to the authentication service.
type Credentials struct {
	// Username is the account email, or the player name for legacy
	// accounts.
	Username string
	// Password is the account password.
	Password string
	// ClientToken pins sessions to one launcher installation. A fresh
	// random token is generated when empty.
	ClientToken string
	// RequestUser asks the service to include the user document.
	RequestUser bool
}

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authenticateRequest struct {
	Agent       agent  `json:"agent"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken,omitempty"`
	RequestUser bool   `json:"requestUser"`
}

type refreshRequest struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

type tokenPair struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
}

type signoutRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewClientToken returns a random token in the dashless UUID form the
// launcher ecosystem uses.
func NewClientToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Login authenticates with username and password and returns a fresh
// session. Invalid credentials surface as an *APIError.
func (c *Client) Login(ctx context.Context, credentials Credentials) (*Session, error) {
	clientToken := credentials.ClientToken
	if clientToken == "" {
		clientToken = NewClientToken()
	}

	request := authenticateRequest{
		Agent:       agent{Name: agentName, Version: agentVersion},
		Username:    credentials.Username,
		Password:    credentials.Password,
		ClientToken: clientToken,
		RequestUser: credentials.RequestUser,
	}

	var session Session
	if err := c.post(ctx, c.authHost+"/authenticate", request, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Refresh trades a session's access token for a fresh one. The old
// token is invalidated by the service.
func (c *Client) Refresh(ctx context.Context, session *Session) (*Session, error) {
	if session == nil {
		return nil, errNoSession
	}

	request := refreshRequest{
		AccessToken: session.AccessToken,
		ClientToken: session.ClientToken,
		RequestUser: true,
	}

	var refreshed Session
	if err := c.post(ctx, c.authHost+"/refresh", request, &refreshed); err != nil {
		return nil, err
	}

	return &refreshed, nil
}

// Validate reports whether a session's access token is still usable.
// A rejected token is not an error, only transport and service
// failures are.
func (c *Client) Validate(ctx context.Context, session *Session) (bool, error) {
	if session == nil {
		return false, errNoSession
	}

	request := tokenPair{
		AccessToken: session.AccessToken,
		ClientToken: session.ClientToken,
	}

	err := c.post(ctx, c.authHost+"/validate", request, nil)
	if err == nil {
		return true, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusUnauthorized) {
		return false, nil
	}

	return false, err
}

// Invalidate revokes a session's access token.
func (c *Client) Invalidate(ctx context.Context, session *Session) error {
	if session == nil {
		return errNoSession
	}

	request := tokenPair{
		AccessToken: session.AccessToken,
		ClientToken: session.ClientToken,
	}

	return c.post(ctx, c.authHost+"/invalidate", request, nil)
}

// Signout revokes every access token of the account using its
// credentials.
func (c *Client) Signout(ctx context.Context, username, password string) error {
	request := signoutRequest{Username: username, Password: password}

	return c.post(ctx, c.authHost+"/signout", request, nil)
}
