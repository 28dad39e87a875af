package yggdrasil

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// texturesProperty is the profile property carrying skin and cape data.
const texturesProperty = "textures"

var (
	// ErrProfileNotFound is returned when no profile exists for the
	// looked-up UUID or name.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNoTextures is returned when a profile carries no textures
	// property.
	ErrNoTextures = errors.New("profile has no textures property")
)

// Texture points at one texture image.
type Texture struct {
	URL      string            `json:"url"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Model reports the skin model, "slim" for Alex-style skins and
// "classic" otherwise.
func (t *Texture) Model() string {
	if t != nil && t.Metadata["model"] == "slim" {
		return "slim"
	}

	return "classic"
}

// Textures is the decoded payload of the "textures" profile property.
type Textures struct {
	Timestamp   int64  `json:"timestamp"`
	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`
	Textures    struct {
		Skin *Texture `json:"SKIN,omitempty"`
		Cape *Texture `json:"CAPE,omitempty"`
	} `json:"textures"`
}

// Textures decodes the profile's textures property. Only profiles
// fetched with LookupProfile carry one.
func (p *GameProfile) Textures() (*Textures, error) {
	for _, property := range p.Properties {
		if property.Name != texturesProperty {
			continue
		}

		decoded, err := base64.StdEncoding.DecodeString(property.Value)
		if err != nil {
			return nil, fmt.Errorf("decode textures property: %w", err)
		}

		var textures Textures
		if err = json.Unmarshal(decoded, &textures); err != nil {
			return nil, fmt.Errorf("parse textures property: %w", err)
		}

		return &textures, nil
	}

	return nil, ErrNoTextures
}

// LookupProfile fetches a player profile with its properties by UUID.
// Results are cached for a few minutes.
func (c *Client) LookupProfile(ctx context.Context, id string) (*GameProfile, error) {
	key := "profile:" + strings.ToLower(id)
	if cached, ok := c.profiles.Get(key); ok {
		return cached.(*GameProfile), nil
	}

	requestURL := c.sessionHost + "/session/minecraft/profile/" + url.PathEscape(id)

	profile, err := c.fetchProfile(ctx, requestURL, id)
	if err != nil {
		return nil, err
	}

	c.profiles.SetDefault(key, profile)

	return profile, nil
}

// LookupProfileByName resolves a player name to its profile. The
// result carries no properties, follow up with LookupProfile for
// textures. Results are cached for a few minutes.
func (c *Client) LookupProfileByName(ctx context.Context, name string) (*GameProfile, error) {
	key := "name:" + strings.ToLower(name)
	if cached, ok := c.profiles.Get(key); ok {
		return cached.(*GameProfile), nil
	}

	requestURL := c.accountHost + "/users/profiles/minecraft/" + url.PathEscape(name)

	profile, err := c.fetchProfile(ctx, requestURL, name)
	if err != nil {
		return nil, err
	}

	c.profiles.SetDefault(key, profile)

	return profile, nil
}

// fetchProfile performs the lookup request. The services report an
// unknown player either as 404 or as an empty 204 body, both map to
// ErrProfileNotFound.
func (c *Client) fetchProfile(ctx context.Context, requestURL, subject string) (*GameProfile, error) {
	var profile GameProfile

	err := c.get(ctx, requestURL, &profile)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", subject, ErrProfileNotFound)
		}

		return nil, err
	}

	if profile.ID == "" {
		return nil, fmt.Errorf("%s: %w", subject, ErrProfileNotFound)
	}

	return &profile, nil
}
