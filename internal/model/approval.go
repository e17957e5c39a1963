package model

import "time"

type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "PENDING"
	ApprovalStatusApproved  ApprovalStatus = "APPROVED"
	ApprovalStatusRejected  ApprovalStatus = "REJECTED"
	ApprovalStatusCancelled ApprovalStatus = "CANCELLED"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further workflow transition is allowed.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected || s == ApprovalStatusCancelled
}

type ApprovalType string

const (
	ApprovalTypeTask     ApprovalType = "TASK"
	ApprovalTypeDocument ApprovalType = "DOCUMENT"
	ApprovalTypeProject  ApprovalType = "PROJECT"
	ApprovalTypeCustom   ApprovalType = "CUSTOM"
)

func (t ApprovalType) IsValid() bool {
	switch t {
	case ApprovalTypeTask, ApprovalTypeDocument, ApprovalTypeProject, ApprovalTypeCustom:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyUrgent Urgency = "URGENT"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyLow    Urgency = "LOW"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyUrgent, UrgencyNormal, UrgencyLow:
		return true
	}
	return false
}

// Approver is the person responsible for one level of an approval.
type Approver struct {
	UserID     string  `json:"user_id"`
	Level      int32   `json:"level"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
}

type Approval struct {
	ID           int64          `json:"id"`
	ServiceID    int64          `json:"service_id"`
	Type         ApprovalType   `json:"approval_type"`
	ExternalID   *string        `json:"external_id,omitempty"`
	Title        string         `json:"title"`
	Description  *string        `json:"description,omitempty"`
	Priority     Priority       `json:"priority"`
	Urgency      Urgency        `json:"urgency"`
	DueDate      *time.Time     `json:"due_date,omitempty"`
	CurrentLevel int32          `json:"current_level"`
	TotalLevels  int32          `json:"total_levels"`
	Approvers    []Approver     `json:"approvers"`
	Status       ApprovalStatus `json:"status"`
	Metadata     map[string]any `json:"metadata"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ApproverAt returns the approver assigned to level, if any.
func (a *Approval) ApproverAt(level int32) (Approver, bool) {
	for _, ap := range a.Approvers {
		if ap.Level == level {
			return ap, true
		}
	}
	return Approver{}, false
}

// IsFinalLevel reports whether the current level is the last one.
func (a *Approval) IsFinalLevel() bool {
	return a.CurrentLevel >= a.TotalLevels
}
