package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/psychometrician/internal/adapters/http/api"
	"github.com/okian/psychometrician/internal/adapters/repository"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func testBank() []model.Item {
	return []model.Item{
		{ID: 1, Text: "I worry about small things.", Type: model.ResponseTypeLikert5, Domain: model.DomainAnxiety, Difficulty: 0.3},
		{ID: 2, Text: "I feel hopeless.", Type: model.ResponseTypeLikert5, Domain: model.DomainDepression, Difficulty: 0.5},
		{ID: 3, Text: "I enjoy meeting new people.", Type: model.ResponseTypeLikert5, Domain: model.DomainSociability, Difficulty: 0.7},
	}
}

func newTestMux(quota int) (*http.ServeMux, *service.Service) {
	store, err := repository.NewMemoryStore(testBank()...)
	So(err, ShouldBeNil)

	svc := service.New(service.WithStore(store), service.WithItemQuota(quota))
	So(svc.Start(context.Background()), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux, svc
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v), ShouldBeNil)
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type nextBody struct {
	Complete  bool                `json:"complete"`
	Selection *adaptive.Selection `json:"selection"`
	Progress  service.Progress    `json:"progress"`
}

func TestServer_Session(t *testing.T) {
	Convey("Given an API server over a running service", t, func() {
		mux, svc := newTestMux(2)
		defer svc.Stop()

		Convey("When asking for an item before starting", func() {
			w := do(mux, http.MethodGet, "/session/next", "")

			Convey("Then it is a conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[apiError](w).Code, ShouldEqual, "not_started")
			})
		})

		Convey("When a session is started", func() {
			w := do(mux, http.MethodPost, "/session", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			p := decode[service.Progress](w)

			Convey("Then progress is reported", func() {
				So(p.State, ShouldEqual, "in_progress")
				So(p.Quota, ShouldEqual, 2)
				So(p.QuestionNumber, ShouldEqual, 1)

				w := do(mux, http.MethodGet, "/session", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Progress](w).SessionID, ShouldEqual, p.SessionID)
			})

			Convey("And the next item carries a ticket", func() {
				w := do(mux, http.MethodGet, "/session/next", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				next := decode[nextBody](w)
				So(next.Complete, ShouldBeFalse)
				So(next.Selection, ShouldNotBeNil)
				So(next.Selection.Ticket.ID, ShouldNotBeEmpty)
				So(next.Selection.Item.ID, ShouldEqual, 1)
				So(next.Progress.Pending, ShouldNotBeNil)
			})

			Convey("And responses complete the session at the quota", func() {
				var out service.Outcome
				for i := 0; i < 2; i++ {
					next := decode[nextBody](do(mux, http.MethodGet, "/session/next", ""))
					body := `{"ticket_id":"` + next.Selection.Ticket.ID + `","response":4}`
					w := do(mux, http.MethodPost, "/session/responses", body)
					So(w.Code, ShouldEqual, http.StatusOK)
					out = decode[service.Outcome](w)
				}
				So(out.Complete, ShouldBeTrue)
				So(out.Report.Domains[model.DomainAnxiety], ShouldEqual, 0.75)

				w := do(mux, http.MethodGet, "/session/next", "")
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[apiError](w).Code, ShouldEqual, "session_complete")

				report := decode[service.Result](do(mux, http.MethodGet, "/session/report", ""))
				So(report.State, ShouldEqual, "complete")
				So(report.History, ShouldHaveLength, 2)
				So(report.History[0].ResponseLabel, ShouldEqual, "Agree")
			})

			Convey("And a replayed ticket is acknowledged as a duplicate", func() {
				next := decode[nextBody](do(mux, http.MethodGet, "/session/next", ""))
				body := `{"ticket_id":"` + next.Selection.Ticket.ID + `","response":"5"}`
				So(do(mux, http.MethodPost, "/session/responses", body).Code, ShouldEqual, http.StatusOK)

				w := do(mux, http.MethodPost, "/session/responses", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Outcome](w).Duplicate, ShouldBeTrue)
			})

			Convey("And a foreign ticket is a conflict", func() {
				do(mux, http.MethodGet, "/session/next", "")
				w := do(mux, http.MethodPost, "/session/responses", `{"ticket_id":"nope","response":"3"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[apiError](w).Code, ShouldEqual, "ticket_mismatch")
			})

			Convey("And a malformed body is a bad request", func() {
				So(do(mux, http.MethodPost, "/session/responses", `{`).Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodPost, "/session/responses", `{"response":"3"}`).Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodPost, "/session/responses", `{"ticket_id":"x","response":true}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the quota exceeds the bank", func() {
			mux, svc := newTestMux(10)
			defer svc.Stop()
			So(do(mux, http.MethodPost, "/session", "").Code, ShouldEqual, http.StatusCreated)

			for i := 0; i < len(testBank()); i++ {
				next := decode[nextBody](do(mux, http.MethodGet, "/session/next", ""))
				body := `{"ticket_id":"` + next.Selection.Ticket.ID + `","response":"3"}`
				So(do(mux, http.MethodPost, "/session/responses", body).Code, ShouldEqual, http.StatusOK)
			}

			Convey("Then the exhausted bank completes the session", func() {
				w := do(mux, http.MethodGet, "/session/next", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				next := decode[nextBody](w)
				So(next.Complete, ShouldBeTrue)
				So(next.Selection, ShouldBeNil)
				So(next.Progress.State, ShouldEqual, "complete")
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodDelete, "/session", "")

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestServer_Items(t *testing.T) {
	Convey("Given an API server over a running service", t, func() {
		mux, svc := newTestMux(2)
		defer svc.Stop()

		Convey("When listing items", func() {
			w := do(mux, http.MethodGet, "/items", "")

			Convey("Then the bank and its summary are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[struct {
					Summary repository.Summary `json:"summary"`
					Items   []model.Item       `json:"items"`
				}](w)
				So(body.Summary.Total, ShouldEqual, 3)
				So(body.Items, ShouldHaveLength, 3)
			})
		})

		Convey("When generating an item", func() {
			w := do(mux, http.MethodPost, "/items/generate", `{"domain":"stress","difficulty":0.6}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			status := decode[service.GenerationStatus](w)
			So(w.Header().Get("Location"), ShouldEqual, "/items/generate/"+status.ID)

			Convey("Then its status becomes done", func() {
				var got service.GenerationStatus
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					w := do(mux, http.MethodGet, "/items/generate/"+status.ID, "")
					So(w.Code, ShouldEqual, http.StatusOK)
					got = decode[service.GenerationStatus](w)
					if got.Terminal() {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(got.Status, ShouldEqual, service.StatusDone)
				So(got.Item.ID, ShouldEqual, 4)
				So(got.Item.Domain, ShouldEqual, model.DomainStress)
			})
		})

		Convey("When generating with an empty body", func() {
			w := do(mux, http.MethodPost, "/items/generate", "")

			Convey("Then the request is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the difficulty is out of range", func() {
			w := do(mux, http.MethodPost, "/items/generate", `{"difficulty":3}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the request id is unknown", func() {
			w := do(mux, http.MethodGet, "/items/generate/missing", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode[apiError](w).Code, ShouldEqual, "not_found")
			})
		})
	})
}

func TestServer_Operational(t *testing.T) {
	Convey("Given an API server over a running service", t, func() {
		mux, svc := newTestMux(2)
		defer svc.Stop()
		do(mux, http.MethodGet, "/stats", "")

		Convey("When scraping the health endpoint", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then it serves the metrics registry", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "psychometrician_")
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then the service stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				stats := decode[map[string]any](w)
				So(stats["started"], ShouldEqual, true)
				So(stats["bankSize"], ShouldEqual, 3.0)
				So(stats, ShouldContainKey, "uptimeSeconds")
			})
		})
	})
}

type unavailable struct{}

func (unavailable) StartSession(context.Context) (service.Progress, error) {
	return service.Progress{}, service.ErrNotRunning
}
func (unavailable) Session(context.Context) (service.Progress, error) {
	return service.Progress{}, service.ErrNotRunning
}
func (unavailable) Next(context.Context) (adaptive.Selection, error) {
	return adaptive.Selection{}, service.ErrNotRunning
}
func (unavailable) Respond(context.Context, string, model.Response) (service.Outcome, error) {
	return service.Outcome{}, service.ErrNotRunning
}
func (unavailable) Report(context.Context) (service.Result, error) {
	return service.Result{}, errors.New("boom")
}

func TestSessionHandler_Errors(t *testing.T) {
	Convey("Given a session handler over an unavailable service", t, func() {
		h := api.NewSessionHandler(unavailable{})

		Convey("When starting a session", func() {
			w := httptest.NewRecorder()
			h.HandleSession(w, httptest.NewRequest(http.MethodPost, "/session", nil))

			Convey("Then it is reported unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When an unexpected error occurs", func() {
			w := httptest.NewRecorder()
			h.HandleReport(w, httptest.NewRequest(http.MethodGet, "/session/report", nil))

			Convey("Then it is an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given a classified error", t, func() {
		cause := errors.New("unexpected EOF")
		err := api.WrapKind("api.respond", api.ErrBadRequest, cause)

		Convey("Then both its kind and cause are visible", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.respond: bad request: unexpected EOF")
		})

		Convey("And an unwrapped kind prints without a cause", func() {
			So(api.NewKind("api.stats", api.ErrMethodNotAllowed).Error(), ShouldEqual, "api.stats: method not allowed")
		})
	})
}
