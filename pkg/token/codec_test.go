package token

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("test-secret", "HS256", "admin-service", "admin-clients", time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		wantErr   bool
	}{
		{name: "HS256", secret: "s", algorithm: "HS256"},
		{name: "HS384", secret: "s", algorithm: "HS384"},
		{name: "HS512", secret: "s", algorithm: "HS512"},
		{name: "unsupported algorithm", secret: "s", algorithm: "RS256", wantErr: true},
		{name: "unknown algorithm", secret: "s", algorithm: "none", wantErr: true},
		{name: "empty secret", secret: "", algorithm: "HS256", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(tt.secret, tt.algorithm, "iss", "aud", time.Minute, time.Hour)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCodec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := testCodec(t)

	signed, err := c.IssueAccess("user-1", []string{"admin", "user"}, "ORG1", []string{"BU1", "BU2"}, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	claims, err := c.DecodeAccess(signed)
	if err != nil {
		t.Fatalf("DecodeAccess() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if !reflect.DeepEqual(claims.Roles, []string{"admin", "user"}) {
		t.Errorf("Roles = %v, want [admin user]", claims.Roles)
	}
	if claims.OrgID != "ORG1" {
		t.Errorf("OrgID = %q, want ORG1", claims.OrgID)
	}
	if !reflect.DeepEqual(claims.BusinessUnits, []string{"BU1", "BU2"}) {
		t.Errorf("BusinessUnits = %v, want [BU1 BU2]", claims.BusinessUnits)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.ExpiresAt.Before(claims.IssuedAt) {
		t.Error("ExpiresAt precedes IssuedAt")
	}
	if claims.Raw["iss"] != "admin-service" {
		t.Errorf("raw iss = %v, want admin-service", claims.Raw["iss"])
	}
}

func TestAccessTokenOptionalClaimsOmitted(t *testing.T) {
	c := testCodec(t)
	signed, err := c.IssueAccess("user-2", nil, "", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	claims, err := c.DecodeAccess(signed)
	if err != nil {
		t.Fatalf("DecodeAccess() error = %v", err)
	}
	if _, ok := claims.Raw["org_id"]; ok {
		t.Error("org_id claim should be absent when no organization is set")
	}
	if _, ok := claims.Raw["business_units"]; ok {
		t.Error("business_units claim should be absent when empty")
	}
}

func TestRefreshTokenCarriesNoRoles(t *testing.T) {
	c := testCodec(t)
	signed, err := c.IssueRefresh("user-1", "ORG1", []string{"BU1"}, nil)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}
	claims, err := c.DecodeRefresh(signed)
	if err != nil {
		t.Fatalf("DecodeRefresh() error = %v", err)
	}
	if _, ok := claims.Raw["roles"]; ok {
		t.Error("refresh tokens must not carry a roles claim")
	}
	if claims.TokenType != TypeRefresh {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	c := testCodec(t)

	access, err := c.IssueAccess("user-1", []string{"user"}, "", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	refresh, err := c.IssueRefresh("user-1", "", nil, nil)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	if _, err := c.DecodeAccess(refresh); !errors.Is(err, ErrWrongType) {
		t.Errorf("DecodeAccess(refresh) error = %v, want ErrWrongType", err)
	}
	if _, err := c.DecodeRefresh(access); !errors.Is(err, ErrWrongType) {
		t.Errorf("DecodeRefresh(access) error = %v, want ErrWrongType", err)
	}
}

func TestDecodeExpired(t *testing.T) {
	// A codec with a negative TTL issues tokens that are already expired.
	expiredIssuer, err := NewCodec("test-secret", "HS256", "admin-service", "admin-clients", -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	signed, err := expiredIssuer.IssueAccess("user-1", []string{"user"}, "", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	c := testCodec(t)
	if _, err := c.DecodeAccess(signed); !errors.Is(err, ErrExpired) {
		t.Errorf("DecodeAccess(expired) error = %v, want ErrExpired", err)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	c := testCodec(t)
	signed, err := c.IssueAccess("user-1", []string{"user"}, "", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	other, err := NewCodec("other-secret", "HS256", "admin-service", "admin-clients", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	wrongIssuer, err := NewCodec("test-secret", "HS256", "someone-else", "admin-clients", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	wrongAudience, err := NewCodec("test-secret", "HS256", "admin-service", "other-clients", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	tests := []struct {
		name  string
		codec *Codec
		token string
	}{
		{name: "wrong secret", codec: other, token: signed},
		{name: "wrong issuer", codec: wrongIssuer, token: signed},
		{name: "wrong audience", codec: wrongAudience, token: signed},
		{name: "garbage token", codec: c, token: "not.a.token"},
		{name: "empty token", codec: c, token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.codec.DecodeAccess(tt.token); !errors.Is(err, ErrInvalid) {
				t.Errorf("DecodeAccess() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestRefreshAccess(t *testing.T) {
	c := testCodec(t)

	refresh, err := c.IssueRefresh("user-1", "ORG1", nil, nil)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	// Roles supplied at refresh time replace whatever was active at login.
	newAccess, err := c.RefreshAccess(refresh, []string{"editor"})
	if err != nil {
		t.Fatalf("RefreshAccess() error = %v", err)
	}
	claims, err := c.DecodeAccess(newAccess)
	if err != nil {
		t.Fatalf("DecodeAccess() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if !reflect.DeepEqual(claims.Roles, []string{"editor"}) {
		t.Errorf("Roles = %v, want [editor]", claims.Roles)
	}
}

func TestRefreshAccessRejectsAccessToken(t *testing.T) {
	c := testCodec(t)
	access, err := c.IssueAccess("user-1", []string{"user"}, "", nil, nil)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	if _, err := c.RefreshAccess(access, []string{"user"}); !errors.Is(err, ErrWrongType) {
		t.Errorf("RefreshAccess(access token) error = %v, want ErrWrongType", err)
	}
}

func TestExtraClaims(t *testing.T) {
	c := testCodec(t)
	signed, err := c.IssueAccess("user-1", []string{"user"}, "", nil, map[string]any{"device": "cli"})
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	claims, err := c.DecodeAccess(signed)
	if err != nil {
		t.Fatalf("DecodeAccess() error = %v", err)
	}
	if claims.Raw["device"] != "cli" {
		t.Errorf("extra claim device = %v, want cli", claims.Raw["device"])
	}
}
