package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("it starts empty", func() {
			So(q.Len(ctx), ShouldEqual, 0)
			So(q.Capacity(), ShouldEqual, 2)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("enqueued jobs come out in order with a timestamp", func() {
			So(q.Enqueue(ctx, Job{ApplicationID: "app-1"}), ShouldBeNil)
			So(q.Enqueue(ctx, Job{ApplicationID: "app-2", Force: true}), ShouldBeNil)
			So(q.Len(ctx), ShouldEqual, 2)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			out := q.Dequeue(dctx)
			first := <-out
			second := <-out
			So(first.ApplicationID, ShouldEqual, "app-1")
			So(first.EnqueuedAt.IsZero(), ShouldBeFalse)
			So(second.ApplicationID, ShouldEqual, "app-2")
			So(second.Force, ShouldBeTrue)
		})

		Convey("a full queue rejects without blocking", func() {
			So(q.Enqueue(ctx, Job{ApplicationID: "a"}), ShouldBeNil)
			So(q.Enqueue(ctx, Job{ApplicationID: "b"}), ShouldBeNil)
			So(q.Enqueue(ctx, Job{ApplicationID: "c"}), ShouldEqual, ErrFull)
			So(q.Len(ctx), ShouldEqual, 2)
		})

		Convey("a job without an application id is refused", func() {
			So(q.Enqueue(ctx, Job{}), ShouldEqual, ErrEmptyJob)
		})

		Convey("a canceled context is refused", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, Job{ApplicationID: "a"}), ShouldEqual, context.Canceled)
		})

		Convey("after Close", func() {
			So(q.Enqueue(ctx, Job{ApplicationID: "buffered"}), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("new jobs are refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, Job{ApplicationID: "late"}), ShouldEqual, ErrStopped)
			})

			Convey("buffered jobs drain and the channel closes", func() {
				out := q.Dequeue(ctx)
				job, ok := <-out
				So(ok, ShouldBeTrue)
				So(job.ApplicationID, ShouldEqual, "buffered")
				_, ok = <-out
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Dequeue stops when its context ends", func() {
			dctx, cancel := context.WithCancel(ctx)
			out := q.Dequeue(dctx)
			cancel()
			select {
			case _, ok := <-out:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue did not stop", ShouldBeEmpty)
			}
		})
	})
}

func TestInMemoryQueueConcurrentProducers(t *testing.T) {
	Convey("Concurrent producers never exceed capacity", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(50))

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					if q.Enqueue(ctx, Job{ApplicationID: "app"}) == nil {
						mu.Lock()
						accepted++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		So(accepted, ShouldEqual, 50)
		So(q.Len(ctx), ShouldEqual, 50)
	})
}

func TestWithCapacityIgnoresNonPositive(t *testing.T) {
	Convey("Non-positive capacities keep the default", t, func() {
		So(NewInMemoryQueue(WithCapacity(0)).Capacity(), ShouldEqual, defaultCapacity)
		So(NewInMemoryQueue(WithCapacity(-5)).Capacity(), ShouldEqual, defaultCapacity)
	})
}
