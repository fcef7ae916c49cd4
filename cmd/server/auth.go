package main

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickyhof/TableDB/core"
	"github.com/nickyhof/TableDB/db"
)

var (
	ErrAuthNotConfigured = errors.New("authentication not configured")
	ErrUnsupportedAuth   = errors.New("unsupported auth type")
	ErrMalformedAuth     = errors.New("expected AUTH JWT <token>")
	ErrNoIdentityClaims  = errors.New("token carries no identity claims")
)

// AuthConfig configures JWT authentication. Tokens must be HMAC-signed
// with JWTSecret.
type AuthConfig struct {
	// Enabled rejects every command except AUTH until a token is accepted.
	Enabled bool

	JWTSecret string

	// Issuer and Audience, when set, must match the "iss" and "aud" claims.
	Issuer   string
	Audience string

	// NameClaim and EmailClaim name the claims the identity is read from.
	// They default to "name" and "email".
	NameClaim  string
	EmailClaim string
}

// grant is an identity vouched for by a token, valid until expires. A zero
// expires never lapses.
type grant struct {
	identity core.Identity
	expires  time.Time
}

func (g *grant) valid(now time.Time) bool {
	return g != nil && (g.expires.IsZero() || now.Before(g.expires))
}

// verifier turns bearer tokens into grants under one AuthConfig.
type verifier struct {
	parser     *jwt.Parser
	secret     []byte
	nameClaim  string
	emailClaim string
}

func newVerifier(config AuthConfig) (*verifier, error) {
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("no JWT secret: %w", ErrAuthNotConfigured)
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		options = append(options, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		options = append(options, jwt.WithAudience(config.Audience))
	}

	return &verifier{
		parser:     jwt.NewParser(options...),
		secret:     []byte(config.JWTSecret),
		nameClaim:  cmp.Or(config.NameClaim, "name"),
		emailClaim: cmp.Or(config.EmailClaim, "email"),
	}, nil
}

func (v *verifier) verify(token string) (*grant, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	name, _ := claims[v.nameClaim].(string)
	email, _ := claims[v.emailClaim].(string)
	if name == "" && email == "" {
		return nil, fmt.Errorf("%w: want %q or %q", ErrNoIdentityClaims, v.nameClaim, v.emailClaim)
	}

	g := &grant{identity: core.Identity{Name: cmp.Or(name, email), Email: email}}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		g.expires = exp.Time
	}
	return g, nil
}

// authToken extracts the token from a parsed "AUTH JWT <token>" command.
func authToken(command db.Command) (string, error) {
	if len(command.Args) != 2 {
		return "", ErrMalformedAuth
	}
	if !strings.EqualFold(command.Args[0], "JWT") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAuth, command.Args[0])
	}
	return command.Args[1], nil
}

// authenticate verifies an AUTH command and, on success, switches the
// session to the token's identity.
func (s *Server) authenticate(sess *session, command db.Command) Response {
	g, err := s.checkAuth(command)
	if err != nil {
		return Response{Success: false, Type: "auth", Error: err.Error()}
	}

	sess.grant = g
	sess.engine = sess.engine.WithIdentity(g.identity)

	ar := AuthResponse{Authenticated: true, Identity: g.identity.String()}
	if !g.expires.IsZero() {
		ar.ExpiresIn = int(time.Until(g.expires).Seconds())
	}
	data, _ := json.Marshal(ar)
	return Response{Success: true, Type: "auth", Result: data}
}

func (s *Server) checkAuth(command db.Command) (*grant, error) {
	if s.verifier == nil {
		return nil, ErrAuthNotConfigured
	}
	token, err := authToken(command)
	if err != nil {
		return nil, err
	}
	return s.verifier.verify(token)
}
