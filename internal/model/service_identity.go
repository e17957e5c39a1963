package model

import (
	"slices"
	"time"
)

type Permission string

const (
	PermissionApprovalsRead  Permission = "approvals:read"
	PermissionApprovalsWrite Permission = "approvals:write"
	PermissionWebhooksRead   Permission = "webhooks:read"
	PermissionWebhooksWrite  Permission = "webhooks:write"
	PermissionEventsRead     Permission = "events:read"
	PermissionEventsWrite    Permission = "events:write"
	PermissionStatsRead      Permission = "stats:read"
	PermissionAll            Permission = "*"
)

var knownPermissions = []Permission{
	PermissionApprovalsRead,
	PermissionApprovalsWrite,
	PermissionWebhooksRead,
	PermissionWebhooksWrite,
	PermissionEventsRead,
	PermissionEventsWrite,
	PermissionStatsRead,
	PermissionAll,
}

func (p Permission) IsValid() bool {
	return slices.Contains(knownPermissions, p)
}

// ServiceIdentity is an external system allowed to call the API. Only the
// SHA-256 digest of its bearer secret is stored.
type ServiceIdentity struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	SecretHash  string       `json:"-"`
	Permissions []Permission `json:"permissions"`
	RateLimit   int32        `json:"rate_limit"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
