package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/expenses/internal/adapters/http/api"
	service "github.com/okian/expenses/internal/app"
	"github.com/okian/expenses/internal/smoke"
	"github.com/okian/expenses/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func newTarget(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	svc := service.New(service.WithLogger(logger.Get()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	server := api.NewServer(svc, logger.Get())
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	ts := httptest.NewServer(server.Wrap(mux))
	t.Cleanup(func() {
		ts.Close()
		svc.Stop()
	})
	return ts, svc
}

func TestConfigValidate(t *testing.T) {
	Convey("Given a valid smoke config", t, func() {
		valid := smoke.Config{BaseURL: "http://localhost:5000", Creates: 10, Deletes: 5, Workers: 2, Timeout: time.Second}
		So(valid.Validate(), ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(*smoke.Config)
		}{
			{"empty url", func(c *smoke.Config) { c.BaseURL = "" }},
			{"negative creates", func(c *smoke.Config) { c.Creates = -1 }},
			{"deletes above creates", func(c *smoke.Config) { c.Deletes = 11 }},
			{"zero workers", func(c *smoke.Config) { c.Workers = 0 }},
			{"zero timeout", func(c *smoke.Config) { c.Timeout = 0 }},
		}
		for _, tc := range cases {
			Convey("It rejects "+tc.name, func() {
				cfg := valid
				tc.mutate(&cfg)
				So(errors.Is(cfg.Validate(), smoke.ErrInvalidConfig), ShouldBeTrue)
			})
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running expenses service", t, func() {
		ts, svc := newTarget(t)
		ctx := context.Background()

		Convey("A full run passes and leaves no rows behind", func() {
			stats, err := smoke.Run(ctx, &smoke.Config{
				BaseURL: ts.URL,
				Creates: 40,
				Deletes: 15,
				Workers: 8,
				Timeout: 5 * time.Second,
			})
			So(err, ShouldBeNil)
			So(stats.Created, ShouldEqual, 40)
			So(stats.Deleted, ShouldEqual, 15)
			So(stats.CleanedUp, ShouldEqual, 25)
			So(stats.ListedAfter-stats.ListedBefore, ShouldEqual, 25)
			So(stats.RunID, ShouldNotBeEmpty)

			list, err := svc.ListExpenses(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("A run with no load still checks the lifecycle", func() {
			stats, err := smoke.Run(ctx, &smoke.Config{BaseURL: ts.URL, Workers: 1, Timeout: time.Second})
			So(err, ShouldBeNil)
			So(stats.Created, ShouldEqual, 0)
		})

		Convey("An invalid config fails before any request", func() {
			stats, err := smoke.Run(ctx, &smoke.Config{BaseURL: ts.URL, Creates: 1, Deletes: 2, Workers: 1, Timeout: time.Second})
			So(errors.Is(err, smoke.ErrInvalidConfig), ShouldBeTrue)
			So(stats, ShouldBeNil)
		})
	})

	Convey("Given a service that is down", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		_, err := smoke.Run(context.Background(), &smoke.Config{BaseURL: ts.URL, Workers: 1, Timeout: time.Second})
		So(errors.Is(err, smoke.ErrUnexpectedStatus), ShouldBeTrue)
	})
}

func TestClient(t *testing.T) {
	Convey("Given a client against a running service", t, func() {
		ts, _ := newTarget(t)
		ctx := context.Background()
		client := smoke.NewClient(ts.URL+"/", time.Second, "test")

		Convey("Create rejects a body the service refuses", func() {
			_, err := client.Create(ctx, map[string]any{"category": "Food"})
			So(errors.Is(err, smoke.ErrUnexpectedStatus), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "400")
		})

		Convey("Missing ids are reported as not found", func() {
			So(client.ExpectNotFound(ctx, 999), ShouldBeNil)
			_, err := client.Get(ctx, 999)
			So(errors.Is(err, smoke.ErrUnexpectedStatus), ShouldBeTrue)
		})
	})
}
