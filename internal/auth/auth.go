package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// RoleChatUser may open sessions and ask questions. Keys configured without
// roles get it by default.
const RoleChatUser = "chat_user"

// Identity is the caller behind an API key. Sessions are owned by TenantID.
type Identity struct {
	TenantID string
	Roles    []string
	// KeyID is a short fingerprint of the key, safe to log.
	KeyID string
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

// StaticAPIKeyValidator checks keys from C360CHAT_AUTH_STATIC_KEYS.
type StaticAPIKeyValidator struct {
	keys map[string]Identity
}

// NewStaticAPIKeyValidator parses comma-separated entries of the form
// key:tenant or key:tenant:role|role.
func NewStaticAPIKeyValidator(entries string) (*StaticAPIKeyValidator, error) {
	validator := &StaticAPIKeyValidator{keys: map[string]Identity{}}
	for _, entry := range strings.Split(entries, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, identity, err := parseKeyEntry(entry)
		if err != nil {
			return nil, err
		}
		if _, exists := validator.keys[key]; exists {
			return nil, fmt.Errorf("invalid static key entry for tenant %q: duplicate key", identity.TenantID)
		}
		validator.keys[key] = identity
	}
	return validator, nil
}

func parseKeyEntry(entry string) (string, Identity, error) {
	parts := strings.Split(entry, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", Identity{}, fmt.Errorf("invalid static key entry: expected key:tenant[:role|role]")
	}
	key := strings.TrimSpace(parts[0])
	tenant := strings.TrimSpace(parts[1])
	if key == "" || tenant == "" {
		return "", Identity{}, fmt.Errorf("invalid static key entry: empty key or tenant")
	}

	roles := []string{RoleChatUser}
	if len(parts) == 3 {
		roles = roles[:0]
		for _, role := range strings.Split(parts[2], "|") {
			if role = strings.TrimSpace(role); role != "" && !slices.Contains(roles, role) {
				roles = append(roles, role)
			}
		}
		if len(roles) == 0 {
			return "", Identity{}, fmt.Errorf("invalid static key entry for tenant %q: empty role list", tenant)
		}
		slices.Sort(roles)
	}
	return key, Identity{TenantID: tenant, Roles: roles, KeyID: fingerprint(key)}, nil
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	identity, ok := v.keys[apiKey]
	return identity, ok
}

func (v *StaticAPIKeyValidator) Len() int {
	return len(v.keys)
}

func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
