// Package token issues and verifies the signed claims tokens used for
// authentication. Tokens are stateless: validity is determined entirely by
// signature, expiry and claim checks at decode time.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminator values carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrExpired reports a token whose exp claim has passed.
	ErrExpired = errors.New("token has expired")
	// ErrInvalid reports a malformed token or one failing signature,
	// issuer or audience checks.
	ErrInvalid = errors.New("invalid token")
	// ErrWrongType reports a structurally valid token of the wrong kind
	// (refresh where access is required, or vice versa).
	ErrWrongType = errors.New("invalid token type")
)

// Claims is the decoded, validated claim set of a token.
type Claims struct {
	UserID        string
	Roles         []string
	TokenType     string
	OrgID         string
	BusinessUnits []string
	IssuedAt      time.Time
	ExpiresAt     time.Time

	// Raw holds every claim as decoded, for callers that need
	// additional claims beyond the typed fields.
	Raw map[string]any
}

// Codec signs and verifies access/refresh tokens. All fields are fixed at
// construction and read-only afterwards, so a single Codec is safe for
// concurrent use across requests.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec for the given HMAC algorithm (HS256, HS384 or
// HS512).
func NewCodec(secret, algorithm, issuer, audience string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &Codec{
		secret:     []byte(secret),
		method:     method,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess creates a signed access token for subject carrying roles and,
// when present, the organization and business-unit scope. extra claims are
// merged on top of the standard set.
func (c *Codec) IssueAccess(subject string, roles []string, orgID string, businessUnits []string, extra map[string]any) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id":    subject,
		"roles":      roles,
		"token_type": TypeAccess,
		"iat":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(c.accessTTL)),
		"iss":        c.issuer,
		"aud":        c.audience,
	}
	if orgID != "" {
		claims["org_id"] = orgID
	}
	if len(businessUnits) > 0 {
		claims["business_units"] = businessUnits
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh creates a signed refresh token. Refresh tokens deliberately
// carry no roles claim: roles are re-read from the store at refresh time so
// role changes take effect on the next refresh.
func (c *Codec) IssueRefresh(subject string, orgID string, businessUnits []string, extra map[string]any) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id":    subject,
		"token_type": TypeRefresh,
		"iat":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(c.refreshTTL)),
		"iss":        c.issuer,
		"aud":        c.audience,
	}
	if orgID != "" {
		claims["org_id"] = orgID
	}
	if len(businessUnits) > 0 {
		claims["business_units"] = businessUnits
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// DecodeAccess verifies signature, issuer, audience and expiry, and requires
// token_type == "access".
func (c *Codec) DecodeAccess(tokenStr string) (*Claims, error) {
	return c.decode(tokenStr, TypeAccess)
}

// DecodeRefresh is the refresh-token counterpart of DecodeAccess.
func (c *Codec) DecodeRefresh(tokenStr string) (*Claims, error) {
	return c.decode(tokenStr, TypeRefresh)
}

// RefreshAccess decodes a refresh token and mints a new access token for its
// subject using the caller-supplied current roles, not any roles cached at
// original login.
func (c *Codec) RefreshAccess(refreshToken string, currentRoles []string) (string, error) {
	claims, err := c.DecodeRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", ErrInvalid
	}
	return c.IssueAccess(claims.UserID, currentRoles, "", nil, nil)
}

func (c *Codec) decode(tokenStr, wantType string) (*Claims, error) {
	raw := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, raw, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	claims := fromMapClaims(raw)
	if claims.TokenType != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}

func fromMapClaims(raw jwt.MapClaims) *Claims {
	c := &Claims{
		UserID:        stringClaim(raw, "user_id"),
		Roles:         stringSliceClaim(raw, "roles"),
		TokenType:     stringClaim(raw, "token_type"),
		OrgID:         stringClaim(raw, "org_id"),
		BusinessUnits: stringSliceClaim(raw, "business_units"),
		Raw:           map[string]any(raw),
	}
	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}

func stringClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceClaim(m jwt.MapClaims, key string) []string {
	vs, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
