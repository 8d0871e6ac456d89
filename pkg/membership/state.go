// Package membership holds the group membership state machine, role rules and
// the permission matrix shared by the group and post services.
package membership

import (
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

// State is the relationship between one user and one group.
type State string

const (
	StateNone    State = "none"
	StateActive  State = "active"
	StatePending State = "pending"
	StateBanned  State = "banned"
)

// Action is a roster transition.
type Action string

const (
	ActionJoin    Action = "join"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionBan     Action = "ban"
	ActionUnban   Action = "unban"
	ActionLeave   Action = "leave"
)

// StateOf maps a stored roster row to its state. A nil row is StateNone.
func StateOf(m *models.GroupMember) State {
	if m == nil {
		return StateNone
	}
	switch m.Status {
	case enums.MembershipStatusActive:
		return StateActive
	case enums.MembershipStatusPending:
		return StatePending
	case enums.MembershipStatusBanned:
		return StateBanned
	}
	return StateNone
}

// Status converts a non-none state to its stored status.
func (s State) Status() (enums.MembershipStatus, bool) {
	switch s {
	case StateActive:
		return enums.MembershipStatusActive, true
	case StatePending:
		return enums.MembershipStatusPending, true
	case StateBanned:
		return enums.MembershipStatusBanned, true
	}
	return "", false
}

// Outcome describes what a permitted transition does to the roster.
type Outcome struct {
	From State
	To   State
	// NoOp is set when the row is already where the action would move it.
	NoOp bool
}

// Delete reports whether the roster row must be removed.
func (o Outcome) Delete() bool {
	return !o.NoOp && o.To == StateNone && o.From != StateNone
}

// ActiveDelta is the change to the group's active member count.
func (o Outcome) ActiveDelta() int {
	if o.NoOp {
		return 0
	}
	delta := 0
	if o.From == StateActive {
		delta--
	}
	if o.To == StateActive {
		delta++
	}
	return delta
}

type rule struct {
	to   State
	noop bool
	err  func() error
}

func conflict(msg string) func() error  { return func() error { return pkgerrors.Conflict(msg) } }
func forbidden(msg string) func() error { return func() error { return pkgerrors.Forbidden(msg) } }
func notFound(msg string) func() error  { return func() error { return pkgerrors.NotFound(msg) } }

// transitions is the full table; join's target from none depends on the
// group's approval setting and is resolved in Transition.
var transitions = map[Action]map[State]rule{
	ActionJoin: {
		StateNone:    {to: StateActive},
		StateActive:  {err: conflict("already a member")},
		StatePending: {err: conflict("request already pending")},
		StateBanned:  {err: forbidden("banned from this group")},
	},
	ActionApprove: {
		StatePending: {to: StateActive},
		StateActive:  {to: StateActive, noop: true},
		StateBanned:  {to: StateBanned, noop: true},
		StateNone:    {err: notFound("membership request not found")},
	},
	ActionReject: {
		StatePending: {to: StateNone},
		StateActive:  {err: conflict("member is not pending")},
		StateBanned:  {err: conflict("member is not pending")},
		StateNone:    {err: notFound("membership request not found")},
	},
	ActionBan: {
		StateActive:  {to: StateBanned},
		StatePending: {to: StateBanned},
		StateBanned:  {err: conflict("member already banned")},
		StateNone:    {err: notFound("member not found")},
	},
	ActionUnban: {
		StateBanned:  {to: StateActive},
		StateActive:  {err: conflict("member is not banned")},
		StatePending: {err: conflict("member is not banned")},
		StateNone:    {err: notFound("member not found")},
	},
	ActionLeave: {
		StateActive:  {to: StateNone},
		StatePending: {to: StateNone},
		StateBanned:  {to: StateNone},
		StateNone:    {err: notFound("not a member of this group")},
	},
}

// Options carries the group settings a transition depends on.
type Options struct {
	RequireApproval bool
}

// Transition resolves action applied to from. Capacity and actor permission
// are checked by the caller.
func Transition(action Action, from State, opts Options) (Outcome, error) {
	byState, ok := transitions[action]
	if !ok {
		return Outcome{}, pkgerrors.Validation("unknown membership action")
	}
	r, ok := byState[from]
	if !ok {
		return Outcome{}, pkgerrors.Validation("unknown membership state")
	}
	if r.err != nil {
		return Outcome{}, r.err()
	}
	to := r.to
	if action == ActionJoin && opts.RequireApproval {
		to = StatePending
	}
	return Outcome{From: from, To: to, NoOp: r.noop}, nil
}

// CheckCapacity fails when growing the active set would exceed limit. A
// non-positive limit means unlimited.
func CheckCapacity(outcome Outcome, limit int, active int64) error {
	if limit <= 0 || outcome.ActiveDelta() <= 0 {
		return nil
	}
	if active >= int64(limit) {
		return pkgerrors.Conflict("maximum member limit reached")
	}
	return nil
}
