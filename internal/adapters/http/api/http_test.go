package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/adapters/http/api"
	service "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/domain/types"
	"github.com/okian/fest/pkg/logger"
)

const adminToken = "s3cret"

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	return "https://img.example/" + filename, nil
}

type fixture struct {
	ts  *httptest.Server
	svc *service.Service
	hub *api.Hub
}

func newFixture(opts ...api.Option) (*fixture, func()) {
	store, err := docstore.OpenBadger(docstore.InMemoryBadgerConfig(), logger.Get())
	So(err, ShouldBeNil)

	hub := api.NewHub()
	svc := service.New(store,
		service.WithUploader(fakeUploader{}),
		service.WithBroadcaster(hub),
	)
	opts = append([]api.Option{
		api.WithAdminToken(adminToken),
		api.WithRateLimit(1000, 1000),
		api.WithHub(hub),
	}, opts...)
	ts := httptest.NewServer(api.NewServer(svc, opts...).Routes())

	return &fixture{ts: ts, svc: svc, hub: hub}, func() {
		ts.Close()
		hub.Close()
		_ = store.Close()
	}
}

type call struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (f *fixture) do(c call) (*http.Response, []byte) {
	var rd io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		So(err, ShouldBeNil)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(c.method, f.ts.URL+c.path, rd)
	So(err, ShouldBeNil)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	So(err, ShouldBeNil)
	return resp, body
}

func (f *fixture) admin(method, path string, body any) (*http.Response, []byte) {
	return f.do(call{method: method, path: path, token: adminToken, body: body})
}

func decodeMap(b []byte) map[string]any {
	var m map[string]any
	So(json.Unmarshal(b, &m), ShouldBeNil)
	return m
}

func decodeList(b []byte) []map[string]any {
	var l []map[string]any
	So(json.Unmarshal(b, &l), ShouldBeNil)
	return l
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		Convey("Then /healthz reports ok", func() {
			resp, body := f.do(call{method: http.MethodGet, path: "/healthz"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeMap(body)["status"], ShouldEqual, "ok")
		})

		Convey("Then /metrics serves the registry", func() {
			f.do(call{method: http.MethodGet, path: "/healthz"})
			resp, body := f.do(call{method: http.MethodGet, path: "/metrics"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Then /stats reports the service", func() {
			resp, body := f.do(call{method: http.MethodGet, path: "/stats"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeMap(body), ShouldContainKey, "standingsVersion")
		})
	})
}

func TestAdminAuth(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		Convey("When an admin route is called without a token", func() {
			resp, body := f.do(call{method: http.MethodGet, path: api.AdminPrefix + "/registrations"})

			Convey("Then it is rejected with the credentials message", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				m := decodeMap(body)
				So(m["code"], ShouldEqual, "unauthorized")
				So(m["message"], ShouldEqual, "invalid credentials")
			})
		})

		Convey("When the wrong token is sent", func() {
			resp, _ := f.do(call{method: http.MethodGet, path: api.AdminPrefix + "/registrations", token: "nope"})
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When the right token is sent", func() {
			resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/registrations", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeList(body), ShouldBeEmpty)
		})
	})

	Convey("Given a tight admin rate limit", t, func() {
		f, done := newFixture(api.WithRateLimit(0.001, 1))
		defer done()

		Convey("Then the second request in a burst is throttled", func() {
			resp, _ := f.admin(http.MethodGet, api.AdminPrefix+"/registrations", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/registrations", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			So(decodeMap(body)["message"], ShouldEqual, "too many attempts, try again later")
		})

		Convey("Then rotating forwarding headers does not reset the limit", func() {
			codes := map[int]int{}
			for i := 0; i < 10; i++ {
				ip := "203.0.113." + strconv.Itoa(i+1)
				resp, _ := f.do(call{
					method:  http.MethodGet,
					path:    api.AdminPrefix + "/registrations",
					token:   "nope",
					headers: map[string]string{"X-Real-IP": ip, "X-Forwarded-For": ip},
				})
				codes[resp.StatusCode]++
			}
			So(codes[http.StatusUnauthorized], ShouldEqual, 1)
			So(codes[http.StatusTooManyRequests], ShouldEqual, 9)
		})
	})
}

func TestEventsAPI(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		Convey("When an event is created", func() {
			resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/events", map[string]any{
				"name":     "elocution",
				"category": "A",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			ev := decodeMap(body)
			id, _ := ev["id"].(string)

			Convey("Then it is public and normalized", func() {
				resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/events/" + id})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(decodeMap(body)["name"], ShouldEqual, "ELOCUTION")
			})

			Convey("Then a second event with the same name conflicts", func() {
				resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/events", map[string]any{"name": "Elocution"})
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				So(decodeMap(body)["code"], ShouldEqual, "duplicate_event")
			})

			Convey("Then an image can be uploaded", func() {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				part, err := mw.CreateFormFile("file", "stage.png")
				So(err, ShouldBeNil)
				_, _ = part.Write([]byte("png-bytes"))
				So(mw.Close(), ShouldBeNil)

				req, _ := http.NewRequest(http.MethodPost, f.ts.URL+api.AdminPrefix+"/events/"+id+"/image", &buf)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				req.Header.Set("Authorization", "Bearer "+adminToken)
				resp, err := http.DefaultClient.Do(req)
				So(err, ShouldBeNil)
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)

				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(decodeMap(body)["imageURL"], ShouldEqual, "https://img.example/stage.png")
			})

			Convey("Then deleting it makes it disappear", func() {
				resp, _ := f.admin(http.MethodDelete, api.AdminPrefix+"/events/"+id, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/events/" + id})
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(decodeMap(body)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the body fails validation", func() {
			resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/events", map[string]any{"category": "Z"})

			Convey("Then it is a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(decodeMap(body)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the body has unknown fields", func() {
			resp, _ := f.admin(http.MethodPost, api.AdminPrefix+"/events", map[string]any{"name": "Quiz", "colour": "red"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then the catalog lists known events", func() {
			resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/catalog"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeList(body), ShouldNotBeEmpty)
		})
	})
}

func TestResultsAPI(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		first := map[string]any{
			"eventName":   "Elocution",
			"placing":     "first",
			"category":    "A",
			"grade":       "A",
			"studentName": "Aisha",
			"chestNumber": "101",
			"team":        "Blue",
		}

		Convey("When a result is posted with an idempotency key", func() {
			key := map[string]string{api.HeaderIdempotencyKey: "res-1"}
			resp, body := f.do(call{method: http.MethodPost, path: api.AdminPrefix + "/results", token: adminToken, body: first, headers: key})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			created := decodeMap(body)
			So(created["points"], ShouldBeGreaterThan, 0)

			Convey("Then a replay returns the original id without a second write", func() {
				resp, body := f.do(call{method: http.MethodPost, path: api.AdminPrefix + "/results", token: adminToken, body: first, headers: key})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get(api.HeaderIdempotencyReplay), ShouldEqual, "true")
				So(decodeMap(body)["id"], ShouldEqual, created["id"])

				_, body = f.admin(http.MethodGet, api.AdminPrefix+"/results", nil)
				So(decodeList(body), ShouldHaveLength, 1)
			})

			Convey("Then the public list hides points by default", func() {
				resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/results?event=elocution"})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				list := decodeList(body)
				So(list, ShouldHaveLength, 1)
				So(list[0], ShouldNotContainKey, "points")
			})

			Convey("Then the public list shows points once enabled", func() {
				resp, _ := f.admin(http.MethodPatch, api.AdminPrefix+"/settings", map[string]any{"showPointsResults": true})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				_, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/results"})
				So(decodeList(body)[0], ShouldContainKey, "points")
			})

			Convey("Then the same placing again needs confirmation", func() {
				second := map[string]any{"eventName": "Elocution", "placing": "1", "studentName": "Ravi", "team": "Red"}
				resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/results", second)
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				So(decodeMap(body)["code"], ShouldEqual, "confirm_required")

				resp, _ = f.admin(http.MethodPost, api.AdminPrefix+"/results?confirm=true", second)
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			})

			Convey("Then recalculation reports nothing to update", func() {
				resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/results/recalculate", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				report := decodeMap(body)
				So(report["scanned"], ShouldEqual, 1)
				So(report["updated"], ShouldEqual, 0)
			})

			Convey("Then the CSV export carries the result", func() {
				resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/export/results.csv", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "text/csv")
				So(resp.Header.Get("Content-Disposition"), ShouldContainSubstring, "results.csv")
				So(string(body), ShouldContainSubstring, "Aisha")
			})
		})

		Convey("When the placing is not recognised", func() {
			bad := map[string]any{"eventName": "Elocution", "placing": "fourth", "studentName": "Aisha"}
			resp, _ := f.admin(http.MethodPost, api.AdminPrefix+"/results", bad)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStandingsAPI(t *testing.T) {
	Convey("Given recorded results and a rebuilt snapshot", t, func() {
		f, done := newFixture()
		defer done()

		for _, r := range []map[string]any{
			{"eventName": "Elocution", "placing": "first", "category": "A", "studentName": "Aisha", "chestNumber": "101", "team": "Blue"},
			{"eventName": "Essay", "placing": "second", "category": "A", "studentName": "Ravi", "chestNumber": "202", "team": "Red"},
		} {
			resp, _ := f.admin(http.MethodPost, api.AdminPrefix+"/results", r)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
		}
		_, err := f.svc.Rebuild(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the public standings rank teams without points", func() {
			resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var st types.Standings
			So(json.Unmarshal(body, &st), ShouldBeNil)
			So(st.Teams, ShouldHaveLength, 2)
			So(st.Teams[0].Team, ShouldEqual, "Blue")
			So(st.Teams[0].Points, ShouldBeNil)
			So(st.PointsShown, ShouldBeFalse)
		})

		Convey("Then top individuals honour the limit", func() {
			resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/individuals?limit=1"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeList(body), ShouldHaveLength, 1)

			resp, _ = f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/individuals?limit=0"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, body = f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/individuals?limit=100000"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(decodeMap(body)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("Then single lookups resolve or 404", func() {
			resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/teams/Red"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeMap(body)["rank"], ShouldEqual, 2)

			resp, _ = f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/individuals/101"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, _ = f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/standings/individuals/999"})
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the admin detail lists placements", func() {
			resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/standings/individuals/101", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decodeMap(body)["placements"], ShouldHaveLength, 1)
		})

		Convey("Then the workbook export is served", func() {
			resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/export/standings.xlsx", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Disposition"), ShouldContainSubstring, "standings.xlsx")
			So(bytes.HasPrefix(body, []byte("PK")), ShouldBeTrue)
		})
	})
}

func TestRegistrationAndMaintenance(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		Convey("When a registration is submitted", func() {
			resp, _ := f.do(call{method: http.MethodPost, path: api.PublicPrefix + "/registrations", body: map[string]any{
				"fullName":      "Aisha",
				"chestNumber":   "101",
				"team":          "Blue",
				"onStageEvents": []string{"Elocution, Song"},
			}})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			Convey("Then the participant is listed and filterable", func() {
				_, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/participants?event=song"})
				list := decodeList(body)
				So(list, ShouldHaveLength, 1)
				So(list[0]["identity"], ShouldEqual, "101")

				_, body = f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/participants?team=red"})
				So(decodeList(body), ShouldBeEmpty)
			})

			Convey("Then the merge preview reports stats", func() {
				resp, body := f.admin(http.MethodGet, api.AdminPrefix+"/participants", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(decodeMap(body), ShouldContainKey, "stats")
			})
		})

		Convey("When the name is missing", func() {
			resp, _ := f.do(call{method: http.MethodPost, path: api.PublicPrefix + "/registrations", body: map[string]any{"team": "Blue"}})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When registration is closed", func() {
			resp, _ := f.admin(http.MethodPatch, api.AdminPrefix+"/settings", map[string]any{"registrationOpen": false})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, body := f.do(call{method: http.MethodPost, path: api.PublicPrefix + "/registrations", body: map[string]any{"fullName": "Aisha"}})
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
			So(decodeMap(body)["code"], ShouldEqual, "registration_closed")
		})

		Convey("When an empty settings patch is sent", func() {
			resp, _ := f.admin(http.MethodPatch, api.AdminPrefix+"/settings", map[string]any{})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When maintenance mode is on", func() {
			resp, _ := f.admin(http.MethodPatch, api.AdminPrefix+"/settings", map[string]any{"maintenanceMode": true})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			Convey("Then public content answers 503 but settings still load", func() {
				resp, _ := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/events"})
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(resp.Header.Get("Retry-After"), ShouldNotBeEmpty)

				resp, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/settings"})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(decodeMap(body)["maintenanceMode"], ShouldEqual, true)
			})

			Convey("Then admin routes keep working", func() {
				resp, _ := f.admin(http.MethodGet, api.AdminPrefix+"/registrations", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestContentAPI(t *testing.T) {
	Convey("Given a running API", t, func() {
		f, done := newFixture()
		defer done()

		Convey("When announcements are posted", func() {
			resp, _ := f.admin(http.MethodPost, api.AdminPrefix+"/announcements", map[string]any{"title": "Lunch", "body": "At noon"})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			resp, body := f.admin(http.MethodPost, api.AdminPrefix+"/announcements", map[string]any{"title": "Venue", "body": "Hall B", "pinned": true})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			pinnedID := decodeMap(body)["id"].(string)

			Convey("Then pinned ones come first", func() {
				_, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/announcements"})
				list := decodeList(body)
				So(list, ShouldHaveLength, 2)
				So(list[0]["id"], ShouldEqual, pinnedID)
			})

			Convey("Then one can be removed", func() {
				resp, _ := f.admin(http.MethodDelete, api.AdminPrefix+"/announcements/"+pinnedID, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/announcements"})
				So(decodeList(body), ShouldHaveLength, 1)
			})
		})

		Convey("When an announcement has no body", func() {
			resp, _ := f.admin(http.MethodPost, api.AdminPrefix+"/announcements", map[string]any{"title": "Empty"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a gallery image is uploaded", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			So(mw.WriteField("title", "Opening"), ShouldBeNil)
			part, err := mw.CreateFormFile("file", "opening.jpg")
			So(err, ShouldBeNil)
			_, _ = part.Write([]byte("jpeg-bytes"))
			So(mw.Close(), ShouldBeNil)

			req, _ := http.NewRequest(http.MethodPost, f.ts.URL+api.AdminPrefix+"/gallery", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			Convey("Then it is listed publicly", func() {
				_, body := f.do(call{method: http.MethodGet, path: api.PublicPrefix + "/gallery"})
				list := decodeList(body)
				So(list, ShouldHaveLength, 1)
				So(list[0]["imageURL"], ShouldEqual, "https://img.example/opening.jpg")
			})
		})
	})
}

func TestStandingsFeed(t *testing.T) {
	Convey("Given a hub behind a test server", t, func() {
		hub := api.NewHub()
		defer hub.Close()
		ts := httptest.NewServer(http.HandlerFunc(hub.HandleStandings))
		defer ts.Close()
		url := "ws" + strings.TrimPrefix(ts.URL, "http")

		hub.Broadcast(types.Standings{Version: 7})

		Convey("When a client connects", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			read := func() map[string]any {
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, msg, err := conn.ReadMessage()
				So(err, ShouldBeNil)
				return decodeMap(msg)
			}

			Convey("Then it receives the last snapshot and then live ones", func() {
				m := read()
				So(m["type"], ShouldEqual, api.MessageTypeStandings)
				So(m["data"].(map[string]any)["version"], ShouldEqual, 7)
				So(hub.Clients(), ShouldEqual, 1)

				hub.Broadcast(types.Standings{Version: 8})
				m = read()
				So(m["data"].(map[string]any)["version"], ShouldEqual, 8)
			})

			Convey("Then closing the hub disconnects it", func() {
				read()
				hub.Close()
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, _, err := conn.ReadMessage()
				So(err, ShouldNotBeNil)
				So(hub.Clients(), ShouldEqual, 0)
			})
		})
	})
}
