package worker

import (
	"context"

	"basegraph.app/approvals/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// TaskProcessor executes one dequeued task.
type TaskProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}
