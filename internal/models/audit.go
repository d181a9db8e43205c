// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog records mutating API calls for operator debugging, including
// raw webhook deliveries. Written asynchronously by middleware.
type AuditLog struct {
	BaseModel
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:100;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:500"`
	StatusCode   int        `json:"status_code"`
	RequestBody  JSONB      `json:"request_body,omitempty" gorm:"type:jsonb"`
}
