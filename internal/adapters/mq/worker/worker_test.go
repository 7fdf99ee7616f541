package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/postpulse/internal/adapters/mq/worker"
	model "github.com/okian/postpulse/internal/domain/model"
	logging "github.com/okian/postpulse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	uploads chan model.Upload
	once    sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{uploads: make(chan model.Upload, 16)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.Upload {
	return mq.uploads
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.uploads) })
	return nil
}

func (mq *mockQueue) add(id string) {
	mq.uploads <- model.Upload{ID: id, Body: []byte(id)}
}

// recorder is a Processor that remembers what it saw and can be told to
// fail or panic for specific upload IDs.
type recorder struct {
	mu     sync.Mutex
	seen   []string
	fail   map[string]error
	panics map[string]bool
	calls  chan string
}

func newRecorder() *recorder {
	return &recorder{
		fail:   make(map[string]error),
		panics: make(map[string]bool),
		calls:  make(chan string, 64),
	}
}

func (r *recorder) Process(ctx context.Context, u model.Upload) error {
	r.mu.Lock()
	r.seen = append(r.seen, u.ID)
	err := r.fail[u.ID]
	boom := r.panics[u.ID]
	r.mu.Unlock()

	defer func() { r.calls <- u.ID }()
	if boom {
		panic("bad upload")
	}
	return err
}

func (r *recorder) processed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func waitFor(ch <-chan string, n int) []string {
	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case id := <-ch:
			got = append(got, id)
		case <-timeout:
			return got
		}
	}
	return got
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newRecorder()

		convey.Convey("When creating a worker with options", func() {
			w := worker.NewInMemoryWorker(q, proc,
				worker.WithName("test-worker"),
				worker.WithLogger(logging.Nop()),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, proc)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And uploads arrive", func() {
				q.add("u1")
				q.add("u2")
				got := waitFor(proc.calls, 2)

				convey.Convey("Then they should be processed in order", func() {
					convey.So(got, convey.ShouldResemble, []string{"u1", "u2"})
				})
			})

			convey.Convey("And processing fails", func() {
				proc.fail["bad"] = errors.New("decode failed")
				q.add("bad")
				q.add("good")
				got := waitFor(proc.calls, 2)

				convey.Convey("Then the worker should keep going", func() {
					convey.So(got, convey.ShouldResemble, []string{"bad", "good"})
				})
			})

			convey.Convey("And processing panics", func() {
				proc.panics["boom"] = true
				q.add("boom")
				q.add("after")
				got := waitFor(proc.calls, 2)

				convey.Convey("Then the panic should be contained", func() {
					convey.So(got, convey.ShouldResemble, []string{"boom", "after"})
				})
			})
		})

		convey.Convey("When shutting down a running worker", func() {
			w := worker.NewInMemoryWorker(q, proc)
			go w.Run(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := w.Shutdown(ctx)

			convey.Convey("Then it should stop without error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown is never acknowledged", func() {
			w := worker.NewInMemoryWorker(q, proc)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			convey.Convey("Then it should time out", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newRecorder()

		convey.Convey("When created with a non-positive size", func() {
			pool := worker.NewPool(0, q, proc)

			convey.Convey("Then it should run one worker", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When several workers share the queue", func() {
			pool := worker.NewPool(3, q, proc)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			for i := 0; i < 9; i++ {
				q.add(fmt.Sprintf("u%d", i))
			}
			got := waitFor(proc.calls, 9)

			convey.Convey("Then every upload should be processed once", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 3)
				convey.So(len(got), convey.ShouldEqual, 9)
				convey.So(len(proc.processed()), convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When shutting down with uploads still queued", func() {
			pool := worker.NewPool(2, q, proc)
			for i := 0; i < 4; i++ {
				q.add(fmt.Sprintf("u%d", i))
			}
			pool.Start(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := pool.Shutdown(ctx)

			convey.Convey("Then the queue should be drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(proc.processed()), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When using a ProcessorFunc", func() {
			var count int
			var mu sync.Mutex
			done := make(chan struct{}, 1)
			fn := worker.ProcessorFunc(func(ctx context.Context, u model.Upload) error {
				mu.Lock()
				count++
				mu.Unlock()
				done <- struct{}{}
				return nil
			})
			pool := worker.NewPool(1, q, fn)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)
			q.add("single")

			select {
			case <-done:
			case <-time.After(2 * time.Second):
			}

			convey.Convey("Then the function should be called", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(count, convey.ShouldEqual, 1)
			})
		})
	})
}
