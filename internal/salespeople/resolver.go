package salespeople

import (
	"strings"

	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
)

// Rule attributes a booking to a salesperson when its substring occurs in the
// CRM owner key. Rules are evaluated strictly in order; the first match wins,
// and that ordering is part of the contract with the sales team.
type Rule struct {
	Substring string
	Owner     string
}

// Resolver applies an ordered rule table with a mandatory default owner.
type Resolver struct {
	rules    []Rule
	fallback string
}

// DefaultRules is the table agreed with the business. Order matters: the
// narrower keys come first so a compound owner key attributes correctly.
var DefaultRules = []Rule{
	{Substring: "amira.k", Owner: "Amira Khalil"},
	{Substring: "amira", Owner: "Amira Haddad"},
	{Substring: "yusuf", Owner: "Yusuf Rahman"},
	{Substring: "daniel", Owner: "Daniel Petrov"},
	{Substring: "sales", Owner: "Front Desk"},
}

// DefaultOwner receives everything no rule claims. The business requires a
// non-null attribution, so the resolver refuses to start without one.
const DefaultOwner = "Operations Desk"

// NewResolver validates the rule table and fallback.
func NewResolver(rules []Rule, fallback string) (*Resolver, error) {
	if strings.TrimSpace(fallback) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fallback owner is required")
	}
	for _, rule := range rules {
		if strings.TrimSpace(rule.Substring) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule substring must not be empty")
		}
		if strings.TrimSpace(rule.Owner) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule owner must not be empty")
		}
	}
	return &Resolver{rules: rules, fallback: fallback}, nil
}

// NewDefaultResolver wires the agreed table.
func NewDefaultResolver() (*Resolver, error) {
	return NewResolver(DefaultRules, DefaultOwner)
}

// Resolve returns the owner for the given CRM key. Matching is
// case-insensitive substring containment, first rule wins, never empty.
func (r *Resolver) Resolve(ownerKey string) string {
	key := strings.ToLower(strings.TrimSpace(ownerKey))
	if key == "" {
		return r.fallback
	}
	for _, rule := range r.rules {
		if strings.Contains(key, strings.ToLower(rule.Substring)) {
			return rule.Owner
		}
	}
	return r.fallback
}
