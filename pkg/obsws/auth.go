package obsws

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	RequestGetAuthRequired = "GetAuthRequired"
	RequestAuthenticate    = "Authenticate"
)

type AuthRequiredResponse struct {
	AuthRequired bool   `json:"authRequired"`
	Challenge    string `json:"challenge"`
	Salt         string `json:"salt"`
}

// Caller sends one request and waits for its response.
type Caller interface {
	Call(ctx context.Context, requestType string, args Args) (*Response, error)
}

// AuthResponse computes the credential proof:
//
//	secret = base64(sha256(password + salt))
//	auth   = base64(sha256(secret + challenge))
//
// The second digest is taken over the base64 text of the first one, not its raw bytes.
func AuthResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])

	auth := sha256.Sum256([]byte(secretB64 + challenge))

	return base64.StdEncoding.EncodeToString(auth[:])
}

// Authenticate runs the GetAuthRequired / Authenticate handshake.
// It reports whether the server asked for a password.
func Authenticate(ctx context.Context, c Caller, password string) (bool, error) {
	resp, err := c.Call(ctx, RequestGetAuthRequired, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	var challenge AuthRequiredResponse
	if err := resp.Unmarshal(&challenge); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s response: %w", ErrAuthFailed, RequestGetAuthRequired, err)
	}

	if !challenge.AuthRequired {
		return false, nil
	}

	args := Args{"auth": AuthResponse(password, challenge.Salt, challenge.Challenge)}
	if _, err := c.Call(ctx, RequestAuthenticate, args); err != nil {
		return true, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return true, nil
}
