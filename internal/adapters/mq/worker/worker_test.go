package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/adapters/mq/queue"
	"github.com/okian/skillmatch/internal/adapters/mq/worker"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/dedupe"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/notification"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockPublisher struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (p *mockPublisher) PublishNotification(_ context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type failingSink struct{}

func (failingSink) CreateNotification(context.Context, model.Notification) error {
	return repository.ErrStoreUnavailable
}

func matchJob(id, recipient, matchID string) model.NotificationJob {
	return model.NotificationJob{
		JobID:     id,
		Template:  notification.TemplateSkillMatch,
		Recipient: recipient,
		Variables: map[string]string{"matchName": "Bruno"},
		Data:      model.NotificationData{UserID: matchID},
		ActionURL: "/users/" + matchID,
		Priority:  model.PriorityNormal,
		DedupeKey: dedupe.Key(recipient, matchID),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker writing to a memory store", t, func() {
		_ = logger.Init()
		ctx := context.Background()

		store := repository.NewMemoryStore()
		pub := &mockPublisher{}
		w := worker.NewInMemoryWorker(nil, notification.NewCreator(store),
			worker.WithName("test-worker"),
			worker.WithDeduper(dedupe.NewInMemoryDeduper()),
			worker.WithPublisher(pub),
		)

		convey.Convey("When a job is processed", func() {
			err := w.Process(ctx, matchJob("j1", "u1", "u2"))

			convey.Convey("Then the rendered notification is stored and published", func() {
				convey.So(err, convey.ShouldBeNil)
				got := store.Notifications("u1")
				convey.So(got, convey.ShouldHaveLength, 1)
				convey.So(got[0].Type, convey.ShouldEqual, notification.TemplateSkillMatch)
				convey.So(got[0].Message, convey.ShouldContainSubstring, "Bruno")
				convey.So(got[0].ActionURL, convey.ShouldEqual, "/users/u2")
				convey.So(pub.count(), convey.ShouldEqual, 1)
			})

			convey.Convey("And the same match is processed again", func() {
				err := w.Process(ctx, matchJob("j2", "u1", "u2"))

				convey.Convey("Then it is skipped as a duplicate", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(store.Notifications("u1"), convey.ShouldHaveLength, 1)
					convey.So(pub.count(), convey.ShouldEqual, 1)
				})
			})
		})

		convey.Convey("When the job has no dedupe key", func() {
			j := matchJob("j1", "u1", "u2")
			j.DedupeKey = ""
			_ = w.Process(ctx, j)
			_ = w.Process(ctx, j)

			convey.Convey("Then every copy is delivered", func() {
				convey.So(store.Notifications("u1"), convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the template is unknown", func() {
			j := matchJob("j1", "u1", "u2")
			j.Template = "nope"
			err := w.Process(ctx, j)

			convey.Convey("Then a side effect error is returned and the key is released", func() {
				convey.So(errors.Is(err, notification.ErrSideEffect), convey.ShouldBeTrue)
				convey.So(errors.Is(err, notification.ErrUnknownTemplate), convey.ShouldBeTrue)
				convey.So(w.Process(ctx, matchJob("j2", "u1", "u2")), convey.ShouldBeNil)
				convey.So(store.Notifications("u1"), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When publishing fails", func() {
			pub.err = errors.New("nats down")
			err := w.Process(ctx, matchJob("j1", "u1", "u2"))

			convey.Convey("Then the stored notification is kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Notifications("u1"), convey.ShouldHaveLength, 1)
			})
		})
	})

	convey.Convey("Given a worker whose store is down", t, func() {
		_ = logger.Init()
		w := worker.NewInMemoryWorker(nil, notification.NewCreator(failingSink{}))

		convey.Convey("Then processing reports the store error", func() {
			err := w.Process(context.Background(), matchJob("j1", "u1", "u2"))
			convey.So(errors.Is(err, repository.ErrStoreUnavailable), convey.ShouldBeTrue)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool draining a queue", t, func() {
		_ = logger.Init()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(3, q, notification.NewCreator(store),
			worker.WithDeduper(dedupe.NewInMemoryDeduper()))
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		convey.Convey("When jobs are enqueued and the pool shuts down", func() {
			for _, id := range []string{"a", "b", "c", "a"} {
				convey.So(q.TryEnqueue(ctx, matchJob("j-"+id, "u1", id)), convey.ShouldBeTrue)
			}

			shutdownCtx, stop := context.WithTimeout(ctx, 5*time.Second)
			defer stop()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every distinct job was delivered once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Notifications("u1"), convey.ShouldHaveLength, 3)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
