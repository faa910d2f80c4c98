package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pioxfer/board"
	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/instrumentation/hooking"
	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/queue"
	"github.com/sarchlab/pioxfer/register"
	"github.com/sarchlab/pioxfer/transfer"
)

func get(h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

// hungUpWriter behaves like the connection of a client that already left.
type hungUpWriter struct {
	header http.Header
	status int
}

func (w *hungUpWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}

	return w.header
}

func (w *hungUpWriter) WriteHeader(status int) { w.status = status }

func (w *hungUpWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func decode[T any](rec *httptest.ResponseRecorder) T {
	var v T
	Expect(json.Unmarshal(rec.Body.Bytes(), &v)).To(Succeed())

	return v
}

var _ = Describe("Monitor", func() {
	var (
		m   *Monitor
		b   *board.Board
		dev *device.Device
		h   http.Handler
	)

	BeforeEach(func() {
		b = board.New(register.DefaultBase, board.DefaultFIFODepth)

		var err error
		dev, err = device.MakeBuilder().
			WithAccessor(b).
			WithPolicy(transfer.Policy{
				ReadCheckInterval: transfer.DefaultReadCheckInterval,
				YieldDelay:        100 * time.Microsecond,
			}).
			WithLogger(logging.Discard()).
			Build("Dev0")
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor().WithLogger(logging.Discard())
		m.RegisterDevice(dev)
		h = m.router()
	})

	It("should hook itself to registered devices", func() {
		Expect(dev.Hooks()).To(ContainElement(m))
	})

	It("should list devices", func() {
		rec := get(h, "/api/devices")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode[[]string](rec)).To(Equal([]string{"Dev0"}))
	})

	It("should answer 404 for an unknown device", func() {
		rec := get(h, "/api/device/Nope")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(Equal("Device not found"))
	})

	It("should survive clients that hang up", func() {
		for _, url := range []string{
			"/api/devices", "/api/device/Dev0", "/api/device/Dev9", "/api/steps",
		} {
			w := &hungUpWriter{}
			req := httptest.NewRequest(http.MethodGet, url, nil)

			Expect(func() { h.ServeHTTP(w, req) }).NotTo(Panic())
		}
	})

	It("should dump the device state", func() {
		rec := get(h, "/api/device/Dev0")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Dev0"))
	})

	It("should report no transfer on an idle device", func() {
		rec := get(h, "/api/device/Dev0/transfer")

		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("should follow a transfer from start to end", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := queue.NewRequest(ctx, device.CodeReadDMA, make([]byte, 64))
		dev.DeviceControl(req)

		Eventually(func() int {
			return get(h, "/api/device/Dev0/transfer").Code
		}).Should(Equal(http.StatusOK))

		t := decode[transferRsp](get(h, "/api/device/Dev0/transfer"))
		Expect(t.ID).To(Equal(req.ID()))
		Expect(t.Direction).To(Equal("read"))
		Expect(t.Total).To(Equal(uint64(64)))

		bars := decode[[]progressBarView](get(h, "/api/progress"))
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Dev0 read " + req.ID()))
		Expect(bars[0].Total).To(Equal(uint64(64)))

		Eventually(func() uint64 {
			return decode[[]progressBarView](get(h, "/api/progress"))[0].Stalls
		}).Should(BeNumerically(">", 0))

		cancel()
		Eventually(req.Done()).Should(BeClosed())

		Expect(decode[[]progressBarView](get(h, "/api/progress"))).To(BeEmpty())
		Expect(get(h, "/api/device/Dev0/transfer").Code).
			To(Equal(http.StatusNoContent))
	})

	It("should track progress events", func() {
		m.Func(hooking.HookCtx{
			Domain: dev,
			Pos:    tracing.HookPosTaskStart,
			Item:   tracing.Task{ID: "t1", Where: "Dev0", What: "write", Detail: uint64(16)},
		})
		m.Func(hooking.HookCtx{
			Domain: dev,
			Pos:    tracing.HookPosTaskProgress,
			Item:   tracing.ProgressEvent{TaskID: "t1", Done: 8, Total: 16},
		})
		m.Func(hooking.HookCtx{
			Domain: dev,
			Pos:    tracing.HookPosTaskProgress,
			Item:   tracing.ProgressEvent{TaskID: "t1", Done: 4, Total: 16},
		})

		bar := m.barOf("t1")
		Expect(bar).NotTo(BeNil())
		Expect(bar.view().Finished).To(Equal(uint64(8)))

		m.Func(hooking.HookCtx{
			Domain: dev,
			Pos:    tracing.HookPosTaskEnd,
			Item:   tracing.Task{ID: "t1"},
		})

		Expect(m.barOf("t1")).To(BeNil())
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should ignore events of unknown tasks", func() {
		Expect(func() {
			m.Func(hooking.HookCtx{
				Domain: dev,
				Pos:    tracing.HookPosTaskProgress,
				Item:   tracing.ProgressEvent{TaskID: "ghost", Done: 4},
			})
			m.Func(hooking.HookCtx{
				Domain: dev,
				Pos:    tracing.HookPosTaskEnd,
				Item:   tracing.Task{ID: "ghost"},
			})
		}).NotTo(Panic())
	})

	It("should list step counts", func() {
		counter := tracing.NewStepCountTracer(tracing.AllTasks)
		m.RegisterStepCounter(counter)

		counter.StartTask(tracing.Task{ID: "t1"})
		for i := 0; i < 3; i++ {
			counter.StepTask(tracing.Task{
				ID:    "t1",
				Steps: []tracing.TaskStep{{What: "stall"}},
			})
		}

		steps := decode[[]stepRsp](get(h, "/api/steps"))
		Expect(steps).To(Equal([]stepRsp{{Step: "stall", Count: 3, Tasks: 1}}))
	})

	It("should report process resources", func() {
		rec := get(h, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode[resourceRsp](rec).MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the dashboard", func() {
		rec := get(h, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should fall back to a random port for privileged ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(BeZero())

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	Context("when serving", func() {
		AfterEach(func() {
			Expect(m.Close()).To(Succeed())
		})

		It("should answer on the returned address", func() {
			url, err := m.StartServer()
			Expect(err).NotTo(HaveOccurred())

			rsp, err := http.Get(url + "/api/devices")
			Expect(err).NotTo(HaveOccurred())
			defer rsp.Body.Close()

			body, err := io.ReadAll(rsp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`["Dev0"]`))
		})
	})
})
