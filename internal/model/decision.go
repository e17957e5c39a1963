package model

import "time"

type DecisionStatus string

const (
	DecisionStatusPending  DecisionStatus = "PENDING"
	DecisionStatusApproved DecisionStatus = "APPROVED"
	DecisionStatusRejected DecisionStatus = "REJECTED"
)

func (d DecisionStatus) IsValid() bool {
	switch d {
	case DecisionStatusPending, DecisionStatusApproved, DecisionStatusRejected:
		return true
	}
	return false
}

// Decision is the outcome recorded for one level of an approval.
type Decision struct {
	ID         int64          `json:"id"`
	ApprovalID int64          `json:"approval_id"`
	ApproverID string         `json:"approver_id"`
	Level      int32          `json:"level"`
	Decision   DecisionStatus `json:"decision"`
	Comment    *string        `json:"comment,omitempty"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
