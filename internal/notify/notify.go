// Package notify defines the outbound admin-notification channel and the
// opaque action tokens echoed back when a human picks an action.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Recognized action verbs carried in action tokens.
const (
	ActionApprove       = "approve"
	ActionReject        = "reject"
	ActionRetakeApprove = "retake_approve"
	ActionRetakeReject  = "retake_reject"
)

// Action is a single button-style choice attached to a notification. The
// token comes back verbatim when the admin picks the action.
type Action struct {
	Label string
	Token string
}

// Token builds an action token of the form "<action>:<studentID>".
func Token(action, studentID string) string {
	return action + ":" + studentID
}

// ParseToken splits an echoed action token back into its action verb and
// student ID.
func ParseToken(token string) (action, studentID string, err error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed action token %q", token)
	}
	return parts[0], parts[1], nil
}

// Notifier delivers messages to the admin channel. Implementations must
// bound each send with a timeout; a returned error means the admin may never
// see the message and callers roll back accordingly.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendWithActions(ctx context.Context, text string, actions []Action) error
}
