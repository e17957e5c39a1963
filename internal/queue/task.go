package queue

type TaskType string

const (
	// TaskTypeEventDispatch fans a stored webhook event out to its subscribers.
	TaskTypeEventDispatch TaskType = "event_dispatch"
	// TaskTypeDeliveryRetry re-attempts a single failed delivery.
	TaskTypeDeliveryRetry TaskType = "delivery_retry"
)

type Task struct {
	TaskType   TaskType
	EventID    int64
	DeliveryID int64
	EventType  string
	TraceID    *string
	Attempt    int
}

// EventDispatch builds the task published after an event row commits.
func EventDispatch(eventID int64, eventType string, traceID string) Task {
	t := Task{TaskType: TaskTypeEventDispatch, EventID: eventID, EventType: eventType}
	if traceID != "" {
		t.TraceID = &traceID
	}
	return t
}

// DeliveryRetry builds the task the sweeper publishes for a due retry.
func DeliveryRetry(deliveryID, eventID int64) Task {
	return Task{TaskType: TaskTypeDeliveryRetry, DeliveryID: deliveryID, EventID: eventID}
}
