package admin

import (
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Stats is the admin dashboard summary.
type Stats struct {
	Users   UserStats   `json:"users"`
	Pets    PetStats    `json:"pets"`
	Groups  GroupStats  `json:"groups"`
	Posts   PostStats   `json:"posts"`
	Reports ReportStats `json:"reports"`
}

type UserStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type PetStats struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Pending   int64 `json:"pending"`
	Adopted   int64 `json:"adopted"`
}

type GroupStats struct {
	Active int64 `json:"active"`
}

type PostStats struct {
	Active          int64 `json:"active"`
	PendingApproval int64 `json:"pendingApproval"`
}

type ReportStats struct {
	Open int64 `json:"open"`
}

// UpdateUserInput is the body of PATCH /admin/users/{userId}.
type UpdateUserInput struct {
	Role     *enums.UserRole `json:"role,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
}

// ResolveReportInput closes a report. Status defaults to resolved.
type ResolveReportInput struct {
	Status enums.ReportStatus `json:"status,omitempty"`
}
