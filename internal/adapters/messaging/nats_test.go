package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/skillmatch/internal/adapters/messaging"
	"github.com/okian/skillmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subject, f.data = subject, data
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher(t *testing.T) {
	Convey("Given a publisher on a fake connection", t, func() {
		conn := &fakeConn{}
		p := messaging.NewPublisher(conn, "")
		n := model.Notification{ID: "n1", Recipient: "u1", Type: "skill_match", Title: "New Skill Match!"}

		Convey("When a notification is published", func() {
			err := p.PublishNotification(context.Background(), n)

			Convey("Then it is sent as JSON on the recipient subject", func() {
				So(err, ShouldBeNil)
				So(conn.subject, ShouldEqual, "notifications.u1")
				var got model.Notification
				So(json.Unmarshal(conn.data, &got), ShouldBeNil)
				So(got.ID, ShouldEqual, "n1")
			})
		})

		Convey("When the connection fails", func() {
			conn.err = errors.New("no responders")
			err := p.PublishNotification(context.Background(), n)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, conn.err), ShouldBeTrue)
		})

		Convey("When closed", func() {
			So(p.Close(), ShouldBeNil)
			So(conn.drained, ShouldBeTrue)
		})
	})
}
