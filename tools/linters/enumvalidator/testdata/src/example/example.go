package example

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
)

type Priority string

const (
	PriorityHigh Priority = "HIGH"
)

type EventType string

const (
	EventTypeApprovalCreated EventType = "approval.created"
)

type Approval struct {
	Status   ApprovalStatus
	Priority Priority
	Title    string
}

type WebhookEvent struct {
	EventType EventType
}

func bad() {
	a := &Approval{}
	a.Status = "DONE" // want "enum field Status assigned string literal"

	e := &WebhookEvent{}
	e.EventType = "approval.closed" // want "enum field EventType assigned string literal"

	_ = Approval{
		Priority: "SOMEDAY", // want "enum field Priority assigned string literal"
		Title:    "ok",
	}
}

func good() {
	a := &Approval{}
	a.Status = ApprovalStatusApproved
	a.Title = "free text is fine"

	_ = Approval{Status: ApprovalStatusPending, Priority: PriorityHigh}
	_ = WebhookEvent{EventType: EventTypeApprovalCreated}
}

func alsoGood() {
	status := ApprovalStatusPending
	a := &Approval{Status: status}
	_ = a
}
