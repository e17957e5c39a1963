package model

// DeliveryCounts tallies delivery rows by status over some window.
type DeliveryCounts struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
	Pending int64 `json:"pending"`
}

type DeliveryStats struct {
	RegistrationID int64 `json:"registration_id"`
	Days           int   `json:"days"`
	DeliveryCounts
	SuccessRate float64 `json:"success_rate"`
}

// ApprovalCountRow is one group of the status/priority/urgency/type breakdown.
type ApprovalCountRow struct {
	Status   ApprovalStatus
	Priority Priority
	Urgency  Urgency
	Type     ApprovalType
	Count    int64
}

type ApprovalStats struct {
	Total                    int64                    `json:"total"`
	ByStatus                 map[ApprovalStatus]int64 `json:"by_status"`
	ByPriority               map[Priority]int64       `json:"by_priority"`
	ByUrgency                map[Urgency]int64        `json:"by_urgency"`
	ByType                   map[ApprovalType]int64   `json:"by_type"`
	AverageCompletionSeconds float64                  `json:"average_completion_seconds"`
	ApprovalRate             float64                  `json:"approval_rate"`
	DeliveriesLast7Days      DeliveryCounts           `json:"deliveries_last_7_days"`
}
