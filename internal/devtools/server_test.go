package devtools_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/common/expfmt"

	"github.com/apifolio/folio/internal/devtools"
	"github.com/apifolio/folio/internal/health"
	"github.com/apifolio/folio/internal/state"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeHealth struct{ snap health.Snapshot }

func (f fakeHealth) Snapshot() health.Snapshot { return f.snap }

var _ = Describe("Server", func() {
	var (
		store  *state.Store
		server *devtools.Server
		ts     *httptest.Server
	)

	get := func(path string) (*http.Response, []byte) {
		resp, err := http.Get(ts.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	BeforeEach(func() {
		store = state.NewStore(state.Defaults())
		server = devtools.NewServer(store, devtools.Options{
			Health: fakeHealth{snap: health.Snapshot{Status: state.StatusOnline, ResponseTimeMs: 30, UptimePercent: 99.9}},
			Logger: quiet,
		})
		ts = httptest.NewServer(server.Handler())
		DeferCleanup(func() {
			ts.Close()
			server.Close()
		})
	})

	Describe("GET /debug/state", func() {
		It("returns the current state", func() {
			store.SetTheme(state.ThemeLight)
			store.SetAPIs([]state.APIDescriptor{{ID: "1", Name: "User API", Status: state.StatusOnline}})

			resp, body := get("/debug/state")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got state.State
			Expect(json.Unmarshal(body, &got)).To(Succeed())
			Expect(got.Theme).To(Equal(state.ThemeLight))
			Expect(got.APIs).To(HaveLen(1))
		})
	})

	Describe("GET /debug/actions", func() {
		BeforeEach(func() {
			store.SetLoading(true)
			store.SetLoading(false)
			store.SetSelectedAPI("2")
		})

		It("returns the recorded history", func() {
			_, body := get("/debug/actions")
			var got struct {
				Entries []struct {
					Action string `json:"action"`
					Seq    uint64 `json:"seq"`
				} `json:"entries"`
			}
			Expect(json.Unmarshal(body, &got)).To(Succeed())
			Expect(got.Entries).To(HaveLen(3))
			Expect(got.Entries[2].Action).To(Equal("setSelectedAPI"))
		})

		It("honours limit", func() {
			_, body := get("/debug/actions?limit=1")
			Expect(string(body)).To(ContainSubstring(`"setSelectedAPI"`))
			Expect(string(body)).NotTo(ContainSubstring(`"setLoading"`))
		})

		It("rejects a bad limit", func() {
			resp, _ := get("/debug/actions?limit=abc")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /debug/health", func() {
		It("returns the latest snapshot", func() {
			_, body := get("/debug/health")
			Expect(string(body)).To(ContainSubstring(`"status":"online"`))
			Expect(string(body)).To(ContainSubstring(`"responseTime":30`))
		})

		It("answers 404 without a health source", func() {
			bare := devtools.NewServer(state.NewStore(state.Defaults()), devtools.Options{Logger: quiet})
			defer bare.Close()
			rr := httptest.NewRecorder()
			bare.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/health", nil))
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /debug/metrics", func() {
		It("serves a parsable text exposition", func() {
			store.SetAPIs([]state.APIDescriptor{
				{ID: "1", Status: state.StatusOnline},
				{ID: "2", Status: state.StatusMaintenance},
			})

			resp, body := get("/debug/metrics")
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/plain"))

			var parser expfmt.TextParser
			families, err := parser.TextToMetricFamilies(strings.NewReader(string(body)))
			Expect(err).NotTo(HaveOccurred())
			Expect(families).To(HaveKey("folio_actions_total"))
			Expect(families["folio_actions_total"].GetMetric()[0].GetCounter().GetValue()).To(BeEquivalentTo(1))
			Expect(families["folio_health_up"].GetMetric()[0].GetGauge().GetValue()).To(BeEquivalentTo(1))
			Expect(families["folio_health_uptime_percent"].GetMetric()[0].GetGauge().GetValue()).To(BeNumerically("~", 99.9, 0.001))

			byStatus := map[string]float64{}
			for _, m := range families["folio_apis"].GetMetric() {
				byStatus[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
			}
			Expect(byStatus).To(Equal(map[string]float64{"online": 1, "offline": 0, "maintenance": 1}))
		})
	})

	Describe("GET /debug/ws", func() {
		It("sends the state on connect and streams new actions", func() {
			store.SetTheme(state.ThemeLight)

			wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/debug/ws"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			read := func() devtools.Message {
				conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, data, err := conn.ReadMessage()
				Expect(err).NotTo(HaveOccurred())
				var msg struct {
					Event string          `json:"event"`
					Data  json.RawMessage `json:"data"`
				}
				Expect(json.Unmarshal(data, &msg)).To(Succeed())
				return devtools.Message{Event: msg.Event, Data: string(msg.Data)}
			}

			greeting := read()
			Expect(greeting.Event).To(Equal("state"))
			Expect(greeting.Data).To(ContainSubstring(`"theme":"light"`))

			Eventually(func() int { return hubClients(ts.URL) }, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

			store.SetSelectedAPI("3")
			msg := read()
			Expect(msg.Event).To(Equal("action"))
			Expect(msg.Data).To(ContainSubstring(`"action":"setSelectedAPI"`))
		})
	})

	Describe("Serve", func() {
		It("stops when the context is cancelled", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())

			srv := devtools.NewServer(state.NewStore(state.Defaults()), devtools.Options{Logger: quiet})
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Serve(ctx, ln) }()

			Eventually(func() error {
				resp, err := http.Get("http://" + ln.Addr().String() + "/debug/state")
				if err == nil {
					resp.Body.Close()
				}
				return err
			}, 2*time.Second, 10*time.Millisecond).Should(Succeed())

			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})

		It("stops recording when the address cannot be bound", func() {
			taken, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(taken.Close)

			own := state.NewStore(state.Defaults())
			srv := devtools.NewServer(own, devtools.Options{Logger: quiet})
			err = srv.Run(context.Background(), taken.Addr().String())
			Expect(err).To(MatchError(ContainSubstring("listen devtools")))

			own.SetLoading(true)
			Expect(srv.Recorder().Entries(0)).To(BeEmpty())
		})
	})

	Describe("a recorder attached before the server", func() {
		It("serves transitions dispatched earlier and outlives Close", func() {
			own := state.NewStore(state.Defaults())
			rec := devtools.NewRecorder(0)
			detach := rec.Attach(own)
			DeferCleanup(detach)

			own.SetAPIs([]state.APIDescriptor{{ID: "1", Status: state.StatusOnline}})

			srv := devtools.NewServer(own, devtools.Options{Recorder: rec, Logger: quiet})
			Expect(srv.Recorder()).To(BeIdenticalTo(rec))
			early := httptest.NewServer(srv.Handler())
			DeferCleanup(early.Close)

			resp, err := http.Get(early.URL + "/debug/actions")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			var got struct {
				Entries []struct {
					Action string `json:"action"`
				} `json:"entries"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&got)).To(Succeed())
			Expect(got.Entries).To(HaveLen(1))
			Expect(got.Entries[0].Action).To(Equal("setApis"))

			srv.Close()
			own.SetLoading(true)
			Expect(rec.Entries(0)).To(HaveLen(2))
		})
	})
})

// hubClients reads the connected-client gauge from the metrics endpoint.
func hubClients(base string) int {
	resp, err := http.Get(base + "/debug/metrics")
	if err != nil {
		return -1
	}
	defer resp.Body.Close()
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return -1
	}
	mf, ok := families["folio_devtools_ws_clients"]
	if !ok || len(mf.GetMetric()) == 0 {
		return -1
	}
	return int(mf.GetMetric()[0].GetGauge().GetValue())
}
