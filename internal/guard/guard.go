// Package guard gates privileged operations behind admin verification.
// A caller is authorized when they have proven knowledge of the configured
// secret, or when the message arrives through the designated admin chat,
// which is always trusted regardless of sender.
package guard

import (
	"crypto/subtle"
	"sync"
)

// Guard holds the process-lifetime set of verified admin user IDs. The set
// never expires and is not persisted across restarts.
type Guard struct {
	mu          sync.RWMutex
	secret      string
	adminChatID int64
	verified    map[int64]struct{}
	challenged  map[int64]struct{}
}

// New creates a Guard for the given secret and trusted admin chat.
func New(secret string, adminChatID int64) *Guard {
	return &Guard{
		secret:      secret,
		adminChatID: adminChatID,
		verified:    make(map[int64]struct{}),
		challenged:  make(map[int64]struct{}),
	}
}

// IsAuthorized reports whether the caller may invoke privileged operations:
// either the caller identity is verified, or the message came through the
// admin chat itself.
func (g *Guard) IsAuthorized(userID, chatID int64) bool {
	if chatID == g.adminChatID {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.verified[userID]
	return ok
}

// IsVerified reports whether the user has individually proven the secret.
func (g *Guard) IsVerified(userID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.verified[userID]
	return ok
}

// BeginChallenge marks the user as being prompted for the secret; their next
// plain message is treated as a verification attempt.
func (g *Guard) BeginChallenge(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.challenged[userID] = struct{}{}
}

// AwaitingSecret reports whether the user has an open secret challenge.
func (g *Guard) AwaitingSecret(userID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.challenged[userID]
	return ok
}

// VerifySecret checks the candidate against the configured secret. On
// success the user joins the verified set for the remaining process lifetime
// and the challenge closes. On failure the challenge stays open so the user
// may retry.
func (g *Guard) VerifySecret(userID int64, candidate string) bool {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) != 1 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified[userID] = struct{}{}
	delete(g.challenged, userID)
	return true
}

// AdminChatID returns the configured always-trusted chat ID.
func (g *Guard) AdminChatID() int64 {
	return g.adminChatID
}
