// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/eventdesk/internal/app/store/audit"
)

// listResponse is the JSON body of GET /audit.
type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"event_types"`
}

// allCategories returns the filter options for the audit log.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: eventTypesForCategory(audit.CategoryAuth)},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth, "":
		return []string{
			audit.EventLoginSuccess,
			audit.EventLoginFailed,
			audit.EventLoginFailedRateLimit,
			audit.EventLogout,
			audit.EventBootstrapAdminEnsured,
		}
	default:
		return nil
	}
}
