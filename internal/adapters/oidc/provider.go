package oidc

// Package oidc provides the single sign-on AuthProvider used when AUTH_MODE=oidc.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/ports"
	"golang.org/x/oauth2"
)

const defaultGroupsClaim = "groups"

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// GroupsClaim names the claim carrying group membership; defaults to "groups".
	GroupsClaim string
	HTTPClient  *http.Client
}

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	oauth       *oauth2.Config
	op          *gooidc.Provider
	verifier    *gooidc.IDTokenVerifier
	groupsClaim string
	httpClient  *http.Client
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider discovers the issuer and builds the OAuth2 configuration.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.Issuer == "":
		return nil, errors.New("issuer is required")
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, httpClient)

	issuer := strings.TrimSuffix(strings.TrimSuffix(cfg.Issuer, "/.well-known/openid-configuration"), "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	if !slices.Contains(scopes, gooidc.ScopeOpenID) {
		scopes = append([]string{gooidc.ScopeOpenID}, scopes...)
	}

	groupsClaim := cfg.GroupsClaim
	if groupsClaim == "" {
		groupsClaim = defaultGroupsClaim
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		op:          op,
		verifier:    op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		groupsClaim: groupsClaim,
		httpClient:  httpClient,
	}, nil
}

// Begin returns the IdP authorization URL with fresh state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	return p.oauth.AuthCodeURL(state, gooidc.Nonce(nonce)), state, nonce, nil
}

// Exchange redeems the code, verifies the ID token and nonce, and maps standard claims.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" || in.State == "" || in.Nonce == "" {
		return domainauth.Identity{}, errors.New("code, state and nonce are required")
	}
	ctx = gooidc.ClientContext(ctx, p.httpClient)

	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.Identity{}, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	var raw map[string]any
	if err := idTok.Claims(&raw); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	c := mapClaims(raw, p.groupsClaim)

	if c.Email == "" || len(c.Groups) == 0 {
		if err := p.fillFromUserInfo(ctx, tok, &c); err != nil {
			return domainauth.Identity{}, err
		}
	}

	c.ExpiresAt = idTok.Expiry
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = time.Now().Add(time.Hour)
	}
	if c.UserID == "" {
		c.UserID = idTok.Subject
	}
	return c, nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, id *domainauth.Identity) error {
	ui, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var raw map[string]any
	if err := ui.Claims(&raw); err != nil {
		return fmt.Errorf("decode user info: %w", err)
	}
	extra := mapClaims(raw, p.groupsClaim)
	if id.Email == "" {
		id.Email = extra.Email
	}
	if id.FirstName == "" {
		id.FirstName = extra.FirstName
	}
	if id.LastName == "" {
		id.LastName = extra.LastName
	}
	if len(id.Groups) == 0 {
		id.Groups = extra.Groups
	}
	return nil
}

// mapClaims maps standard OIDC claims plus the configured groups claim.
func mapClaims(raw map[string]any, groupsClaim string) domainauth.Identity {
	str := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	return domainauth.Identity{
		UserID:    firstNonEmpty(str("preferred_username"), str("sub")),
		Email:     str("email"),
		FirstName: str("given_name"),
		LastName:  str("family_name"),
		Groups:    stringList(raw[groupsClaim]),
	}
}

// stringList accepts a JSON array of strings or a single space/comma separated string.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	case string:
		return strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' })
	default:
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
