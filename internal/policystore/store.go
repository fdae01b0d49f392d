// internal/policystore/store.go
package policystore

import (
	"context"
	"errors"
	"strings"

	"policy-assistant/internal/models"
)

// ErrNotFound is returned when no stored record matches the lookup criteria.
var ErrNotFound = errors.New("no matching policy found")

// Query carries the lookup identifiers. Empty fields are ignored.
type Query struct {
	PolicyID    string
	UserID      string
	ProductName string
}

// Empty reports whether the query carries no identifier at all.
func (q Query) Empty() bool {
	return q.PolicyID == "" && q.UserID == "" && q.ProductName == ""
}

// Store is a read-only source of user policy records. Records are scanned in
// storage order; the first record matching any provided identifier wins.
type Store interface {
	FindPolicy(ctx context.Context, q Query) (*models.PolicyRecord, error)
}

// matches applies the per-record criteria in fixed order: policy number
// (including the alternate number field), then product name substring, then
// proposer name/email substring.
func matches(rec *models.PolicyRecord, q Query) bool {
	if q.PolicyID != "" {
		if q.PolicyID == stringField(rec.PolicyDetails, "policy_number") ||
			q.PolicyID == stringField(rec.PolicyDetails, "alternative_policy_number") {
			return true
		}
	}

	if q.ProductName != "" {
		product := strings.ToLower(stringField(rec.PolicyDetails, "product_name"))
		if product != "" && strings.Contains(product, strings.ToLower(q.ProductName)) {
			return true
		}
	}

	if q.UserID != "" {
		user := strings.ToLower(q.UserID)
		name := strings.ToLower(stringField(rec.ProposerDetails, "name"))
		email := strings.ToLower(stringField(rec.ProposerDetails, "email_id"))
		if (name != "" && strings.Contains(name, user)) ||
			(email != "" && strings.Contains(email, user)) {
			return true
		}
	}

	return false
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
