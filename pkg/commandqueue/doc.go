// Package commandqueue provides lane-based task execution with FIFO ordering per lane.
//
// Invariants:
// - Tasks in the same lane execute one at a time in submission order.
// - Tasks in different lanes may execute concurrently.
// - A lane holds no state once its last task finishes.
//
// Usage:
//
//	queue := commandqueue.New(logger)
//	defer queue.Close()
//	err := queue.Enqueue(ctx, "conversation:42", func(ctx context.Context) error {
//		return handle(ctx)
//	})
package commandqueue
