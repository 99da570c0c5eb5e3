package domain

import "strings"

// User is the identity of an authenticated session.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// AdminAllowlist holds the administrator identities granted on sign in.
type AdminAllowlist map[string]struct{}

// NewAdminAllowlist builds an allow-list from the given addresses. Blank
// entries are skipped; matching is exact.
func NewAdminAllowlist(emails ...string) AdminAllowlist {
	list := make(AdminAllowlist, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		list[e] = struct{}{}
	}
	return list
}

// Contains reports whether email is an administrator address.
func (a AdminAllowlist) Contains(email string) bool {
	_, ok := a[email]
	return ok
}
