package enums

import "fmt"

// MembershipStatus is the persisted status of a group_members row.
type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusPending MembershipStatus = "pending"
	MembershipStatusBanned  MembershipStatus = "banned"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusActive,
	MembershipStatusPending,
	MembershipStatusBanned,
}

// String implements fmt.Stringer.
func (m MembershipStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MembershipStatus.
func (m MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMembershipStatus converts raw input into a MembershipStatus.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	for _, candidate := range validMembershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership status %q", value)
}
