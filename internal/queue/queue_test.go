package queue_test

import (
	"context"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/approvals/internal/queue"
)

var _ = Describe("Redis stream queue", func() {
	var (
		ctx      context.Context
		mr       *miniredis.Miniredis
		client   *redis.Client
		producer queue.Producer
		consumer *queue.RedisConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		producer = queue.NewRedisProducer(client, "webhook_events", nil)

		var err error
		consumer, err = queue.NewRedisConsumer(client, queue.ConsumerConfig{
			Stream:      "webhook_events",
			Group:       "dispatchers",
			Consumer:    "worker-1",
			DLQStream:   "webhook_events_dlq",
			BatchSize:   10,
			Block:       -1,
			MaxAttempts: 3,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = client.Close()
	})

	It("round-trips an event dispatch task", func() {
		Expect(producer.Enqueue(ctx, queue.EventDispatch(42, "approval.created", "4bf92f3577b34da6a3ce929d0e0e4736"))).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		msg := msgs[0]
		Expect(msg.TaskType).To(Equal(queue.TaskTypeEventDispatch))
		Expect(msg.EventID).To(Equal(int64(42)))
		Expect(msg.DeliveryID).To(BeNil())
		Expect(msg.EventType).To(Equal("approval.created"))
		Expect(msg.TraceID).To(Equal("4bf92f3577b34da6a3ce929d0e0e4736"))
		Expect(msg.Attempt).To(Equal(1))
	})

	It("round-trips a delivery retry task", func() {
		Expect(producer.Enqueue(ctx, queue.DeliveryRetry(7, 42))).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].TaskType).To(Equal(queue.TaskTypeDeliveryRetry))
		Expect(*msgs[0].DeliveryID).To(Equal(int64(7)))
		Expect(msgs[0].EventID).To(Equal(int64(42)))
	})

	It("rejects tasks without a type", func() {
		Expect(producer.Enqueue(ctx, queue.Task{EventID: 1})).To(MatchError(ContainSubstring("missing task type")))
	})

	It("returns an empty batch when the stream is idle", func() {
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())
	})

	It("requeues with the attempt counter bumped and the original acked", func() {
		Expect(producer.Enqueue(ctx, queue.EventDispatch(42, "approval.created", ""))).To(Succeed())
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(consumer.Requeue(ctx, msgs[0], "boom")).To(Succeed())

		pending, err := client.XPending(ctx, "webhook_events", "dispatchers").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())

		again, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(HaveLen(1))
		Expect(again[0].Attempt).To(Equal(2))
		Expect(again[0].EventID).To(Equal(int64(42)))
		Expect(again[0].Raw.Values).To(HaveKeyWithValue("last_error", "boom"))
	})

	It("moves a message to the dead letter stream", func() {
		Expect(producer.Enqueue(ctx, queue.DeliveryRetry(7, 42))).To(Succeed())
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(consumer.SendDLQ(ctx, msgs[0], "gave up")).To(Succeed())

		dead, err := client.XRange(ctx, "webhook_events_dlq", "-", "+").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(dead).To(HaveLen(1))
		Expect(dead[0].Values).To(HaveKeyWithValue("error", "gave up"))
		Expect(dead[0].Values).To(HaveKeyWithValue("delivery_id", "7"))
	})

	It("acks and drops messages it cannot parse", func() {
		Expect(client.XAdd(ctx, &redis.XAddArgs{
			Stream: "webhook_events",
			Values: map[string]any{"task_type": "mystery"},
		}).Err()).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())

		pending, err := client.XPending(ctx, "webhook_events", "dispatchers").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})

	It("tolerates creating the group twice", func() {
		_, err := queue.NewRedisConsumer(client, queue.ConsumerConfig{
			Stream: "webhook_events", Group: "dispatchers", Consumer: "worker-2",
		})
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("ParseMessage", func() {
	DescribeTable("validation",
		func(values map[string]any, wantErr string) {
			_, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			if wantErr == "" {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(err).To(MatchError(ContainSubstring(wantErr)))
		},
		Entry("valid dispatch", map[string]any{"task_type": "event_dispatch", "event_id": "5"}, ""),
		Entry("dispatch without event", map[string]any{"task_type": "event_dispatch"}, "missing event_id"),
		Entry("retry without delivery", map[string]any{"task_type": "delivery_retry", "event_id": "5"}, "missing delivery_id"),
		Entry("missing type", map[string]any{"event_id": "5"}, "missing task_type"),
		Entry("unknown type", map[string]any{"task_type": "sync", "event_id": "5"}, "unknown task_type"),
		Entry("bad number", map[string]any{"task_type": "event_dispatch", "event_id": "x"}, "parsing event_id"),
	)
})
