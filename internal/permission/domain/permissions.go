// Package domain implements wildcard evaluation over namespaced permission
// strings, the role aggregate that stores them and the wire format they are
// persisted in.
package domain

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Wildcard is the token that matches every permission within its scope: as a
// permission it covers the whole namespace, as a namespace it covers every
// namespace.
const Wildcard = "*"

// CandidatesFor returns every granted token that would satisfy the
// permission: the global wildcard, the literal permission, and each dotted
// path prefix widened to a trailing wildcard. For "a.b.c" that is
// ["*", "a.b.c", "a.*", "a.b.*"].
func CandidatesFor(permission string) []string {
	candidates := []string{Wildcard}

	if permission != Wildcard {
		candidates = append(candidates, permission)

		components := strings.Split(permission, ".")
		for i := 0; i < len(components)-1; i++ {
			candidates = append(candidates, strings.Join(components[:i+1], ".")+".*")
		}
	}

	return candidates
}

// allows is the shared evaluation over a namespace → permission-list map.
func allows(permissions map[string][]string, namespace, permission string) (bool, error) {
	if strings.Contains(permission, Wildcard) {
		return false, ErrWildcardPermission
	}

	available := make([]string, 0, len(permissions[namespace])+len(permissions[Wildcard]))
	available = append(available, permissions[namespace]...)
	available = append(available, permissions[Wildcard]...)

	if len(available) == 0 {
		return false, nil
	}

	for _, candidate := range CandidatesFor(permission) {
		for _, granted := range available {
			if candidate == granted {
				return true, nil
			}
		}
	}

	return false, nil
}

// PermissionGrants is the immutable evaluation engine over the permissions a
// user holds across roles. It is built once per authorization query and
// never persisted.
type PermissionGrants struct {
	permissions map[string][]string
}

// NewPermissionGrants creates a grants engine over the namespace →
// permission-list map.
func NewPermissionGrants(permissions map[string][]string) *PermissionGrants {
	return &PermissionGrants{permissions: permissions}
}

// Allows reports whether the grants contain the permission in the namespace,
// honoring wildcard grants. The queried permission must be concrete; a
// wildcard argument is an error.
func (g *PermissionGrants) Allows(namespace, permission string) (bool, error) {
	return allows(g.permissions, namespace, permission)
}

// PermissionCollection is the mutable permission set carried by a role. It
// shares evaluation semantics with PermissionGrants and serializes to the
// namespace:permission wire format.
type PermissionCollection struct {
	permissions map[string][]string
}

// NewPermissionCollection creates a collection over the namespace →
// permission-list map. A nil map makes an empty collection.
func NewPermissionCollection(permissions map[string][]string) *PermissionCollection {
	if permissions == nil {
		permissions = make(map[string][]string)
	}
	return &PermissionCollection{permissions: permissions}
}

// Allows reports whether the collection contains the permission in the
// namespace, honoring wildcard grants.
func (c *PermissionCollection) Allows(namespace, permission string) (bool, error) {
	return allows(c.permissions, namespace, permission)
}

// Has reports whether the exact permission token is present in the
// namespace, without wildcard expansion.
func (c *PermissionCollection) Has(namespace, permission string) bool {
	for _, granted := range c.permissions[namespace] {
		if granted == permission {
			return true
		}
	}
	return false
}

// Add inserts the permission token into the namespace. Duplicates are
// ignored.
func (c *PermissionCollection) Add(namespace, permission string) {
	if c.Has(namespace, permission) {
		return
	}
	c.permissions[namespace] = append(c.permissions[namespace], permission)
}

// Remove deletes the exact permission token from the namespace, reporting
// whether it was present.
func (c *PermissionCollection) Remove(namespace, permission string) bool {
	granted := c.permissions[namespace]
	for i, token := range granted {
		if token == permission {
			c.permissions[namespace] = append(granted[:i], granted[i+1:]...)
			return true
		}
	}
	return false
}

// MarshalJSON flattens the collection into the wire format: a JSON array of
// namespace:permission strings. Namespaces are emitted in sorted order so
// the serialization is deterministic.
func (c *PermissionCollection) MarshalJSON() ([]byte, error) {
	namespaces := make([]string, 0, len(c.permissions))
	for namespace := range c.permissions {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)

	flattened := make([]string, 0, len(namespaces))
	for _, namespace := range namespaces {
		for _, permission := range c.permissions[namespace] {
			flattened = append(flattened, namespace+":"+permission)
		}
	}

	return json.Marshal(flattened)
}

// ExtractPermissions parses the wire format back into a namespace →
// permission-list map. The bare literal "*" means all namespaces, all
// permissions. Any structural problem aborts the whole parse: a non-array
// document or a non-string element is a MalformedPermissionCollectionError,
// a token without exactly one colon is a MalformedPermissionError.
func ExtractPermissions(raw []byte, roleID *uuid.UUID) (map[string][]string, error) {
	var tokens []json.RawMessage
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, &MalformedPermissionCollectionError{RoleID: roleID}
	}

	extracted := make(map[string][]string)
	for _, rawToken := range tokens {
		var token string
		if err := json.Unmarshal(rawToken, &token); err != nil {
			return nil, &MalformedPermissionCollectionError{RoleID: roleID}
		}

		if token == Wildcard {
			extracted[Wildcard] = []string{Wildcard}
			continue
		}

		if strings.Count(token, ":") != 1 {
			return nil, &MalformedPermissionError{Permission: token}
		}

		parts := strings.SplitN(token, ":", 2)
		extracted[parts[0]] = append(extracted[parts[0]], parts[1])
	}

	return extracted, nil
}
