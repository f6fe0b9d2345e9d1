package config_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.NotifyDedupeSize, convey.ShouldEqual, 0)
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 20)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
			convey.So(cfg.RankingPolicy, convey.ShouldEqual, "strict")
			convey.So(cfg.AvailabilityJitter, convey.ShouldBeTrue)
			convey.So(cfg.JitterSeed, convey.ShouldEqual, 42)
			convey.So(cfg.TokenCookie, convey.ShouldEqual, "token")
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "skillmatch")
			convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("Then it is valid once a secret is set", func() {
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			cfg.JWTSecret = "s3cret"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
