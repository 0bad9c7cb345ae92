package redis

import "fmt"

const (
	// KeyPrefixSession is the prefix for signed-in session keys
	KeyPrefixSession = "smartmark:session:"
	// KeyPrefixOAuthState is the prefix for pending sign-in keys
	KeyPrefixOAuthState = "smartmark:oauth:state:"
)

// SessionKey returns the Redis key for a session id
func SessionKey(id string) string {
	return KeyPrefixSession + id
}

// OAuthStateKey returns the Redis key for a pending sign-in state
func OAuthStateKey(state string) string {
	return KeyPrefixOAuthState + state
}

// ExtractSessionID extracts the session id from a Redis key
func ExtractSessionID(key string) (string, error) {
	if len(key) <= len(KeyPrefixSession) || key[:len(KeyPrefixSession)] != KeyPrefixSession {
		return "", fmt.Errorf("invalid session key: %s", key)
	}
	return key[len(KeyPrefixSession):], nil
}
