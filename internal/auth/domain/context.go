// Package domain defines the authentication domain: operating contexts,
// bearer credentials, the auth token aggregate and its lifecycle.
package domain

import (
	"strings"

	"github.com/icarushq/icarus/internal/errors"
)

// OperatingContext scopes a session to one audience. A token issued for one
// context is never valid in another.
type OperatingContext string

const (
	// ContextAccount scopes a session to the account (customer) area.
	ContextAccount OperatingContext = "account"

	// ContextPlatform scopes a session to the platform (admin) area.
	ContextPlatform OperatingContext = "platform"
)

// ErrUnknownContext indicates a string that names no operating context.
var ErrUnknownContext = errors.Wrap(errors.ErrInvalidInput, "unknown operating context")

// operatingContexts lists every context in declaration order. Resolution
// scans this slice, so ordering is deterministic.
var operatingContexts = []OperatingContext{ContextAccount, ContextPlatform}

// tokenPrefixes maps each context to the literal prefix prepended to bearer
// tokens issued for it. No prefix is a prefix of another.
var tokenPrefixes = map[OperatingContext]string{
	ContextAccount:  "ic_acc_",
	ContextPlatform: "ic_pla_",
}

// Contexts returns every operating context in declaration order.
func Contexts() []OperatingContext {
	contexts := make([]OperatingContext, len(operatingContexts))
	copy(contexts, operatingContexts)
	return contexts
}

// ParseOperatingContext converts a stored or submitted string to a context.
func ParseOperatingContext(value string) (OperatingContext, error) {
	for _, context := range operatingContexts {
		if string(context) == value {
			return context, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownContext, "%q", value)
}

// String returns the context's stored representation.
func (c OperatingContext) String() string {
	return string(c)
}

// TokenPrefix returns the literal prefix for bearer tokens of this context.
func (c OperatingContext) TokenPrefix() string {
	return tokenPrefixes[c]
}

// ResolveTokenContext returns the context whose prefix starts the token, or
// false if no context matches.
func ResolveTokenContext(token string) (OperatingContext, bool) {
	for _, context := range operatingContexts {
		if strings.HasPrefix(token, context.TokenPrefix()) {
			return context, true
		}
	}
	return "", false
}

// StripTokenPrefix removes the context prefix from the token, returning
// false if no context matches.
func StripTokenPrefix(token string) (string, bool) {
	context, ok := ResolveTokenContext(token)
	if !ok {
		return "", false
	}
	return token[len(context.TokenPrefix()):], true
}
