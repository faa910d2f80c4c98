package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/pioxfer/board"
	"github.com/sarchlab/pioxfer/config"
	"github.com/sarchlab/pioxfer/datarecording"
	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/monitoring"
	"github.com/sarchlab/pioxfer/portio"
	"github.com/sarchlab/pioxfer/queue"
)

const queueDepth = 16

// session is one board, its device and its request queue, plus whatever
// instrumentation the configuration asks for.
type session struct {
	cfg    *config.Config
	logger *slog.Logger

	board *board.Board
	port  *portio.DevPort

	dev   *device.Device
	queue *queue.Sequential
	steps *tracing.StepCountTracer

	monitor  *monitoring.Monitor
	recorder datarecording.DataRecorder
	dbTracer *tracing.DBTracer

	peerCancel context.CancelFunc
	peerDone   chan error
	stopQueue  context.CancelFunc
}

func openSession(cfg *config.Config) (*session, error) {
	s := &session{
		cfg:    cfg,
		logger: logging.For(logging.ComponentCLI),
	}

	accessor, err := s.openBackend()
	if err != nil {
		return nil, err
	}

	s.dev, err = device.MakeBuilder().
		WithAccessor(accessor).
		WithResources(cfg.Resources()).
		WithPolicy(cfg.Policy()).
		WithLauncher(device.NewGoroutineLauncher(cfg.Workers.Max)).
		Build(cfg.Device.Name)
	if err != nil {
		s.closeBackend()
		return nil, err
	}

	if err := s.instrument(); err != nil {
		s.closeBackend()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopQueue = cancel
	s.queue = queue.NewSequential(s.dev, queueDepth)
	s.queue.Start(ctx)

	return s, nil
}

func (s *session) openBackend() (portio.Accessor, error) {
	switch s.cfg.Device.Backend {
	case config.BackendDevPort:
		port, err := portio.OpenDevPort(s.cfg.Device.DevPortPath)
		if err != nil {
			return nil, err
		}

		s.port = port
		s.logger.Info("using port I/O", "device", port,
			"window", s.cfg.Resources().Window)

		return port, nil
	default:
		s.board = board.New(s.cfg.Device.PortBase, s.cfg.Sim.FIFODepth)
		s.logger.Info("using simulated board",
			"window", s.cfg.Resources().Window,
			"fifo-bytes", s.board.Depth())

		return s.board, nil
	}
}

func (s *session) closeBackend() {
	if s.port != nil {
		if err := s.port.Close(); err != nil {
			s.logger.Warn("closing port I/O", "error", err)
		}
	}
}

// instrument registers the hooks. Hooks must be in place before the first
// request is served.
func (s *session) instrument() error {
	s.steps = tracing.NewStepCountTracer(tracing.AllTasks)
	tracing.CollectTrace(s.dev, s.steps)

	if logging.Level() <= slog.LevelDebug {
		tracing.CollectTrace(s.dev,
			tracing.NewLogTracer(logging.For(logging.ComponentTransfer)))
	}

	if s.cfg.Recording.Enabled {
		recorder, err := datarecording.New(s.cfg.Recording.Path)
		if err != nil {
			return fmt.Errorf("starting trace recording: %w", err)
		}

		s.recorder = recorder
		s.dbTracer = tracing.NewDBTracer(s.recorder)
		tracing.CollectTrace(s.dev, s.dbTracer)
	}

	if s.cfg.Monitor.Enabled {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(s.cfg.Monitor.Port).
			WithOpenBrowser(s.cfg.Monitor.OpenBrowser)
		s.monitor.RegisterDevice(s.dev)
		s.monitor.RegisterStepCounter(s.steps)

		if _, err := s.monitor.StartServer(); err != nil {
			return err
		}
	}

	return nil
}

// startPeer plays the PCI side of a simulated board: src is streamed into the
// board and whatever the board sends goes to sink.
func (s *session) startPeer(src io.Reader, sink io.Writer, rate uint64) error {
	if s.board == nil {
		return errors.New("a peer needs the simulated board")
	}

	peer := board.NewPeer(s.board).WithSink(sink).WithRate(rate)
	if src != nil {
		peer.WithSource(src)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.peerCancel = cancel
	s.peerDone = make(chan error, 1)

	go func() {
		s.peerDone <- peer.Run(ctx)
	}()

	return nil
}

// stopPeer stops the peer and returns the error it stopped with.
func (s *session) stopPeer() error {
	if s.peerCancel == nil {
		return nil
	}

	s.peerCancel()
	err := <-s.peerDone
	s.peerCancel = nil

	return err
}

// do runs one request to completion.
func (s *session) do(
	ctx context.Context,
	code device.ControlCode,
	buf []byte,
) (uint64, error) {
	n, err := s.queue.Do(ctx, code, buf)
	if err != nil {
		return n, fmt.Errorf("%s: %w", code, err)
	}

	return n, nil
}

func (s *session) Close() error {
	var errs []error

	s.queue.Stop()
	s.stopQueue()

	errs = append(errs, s.stopPeer())

	if s.monitor != nil {
		errs = append(errs, s.monitor.Close())
	}

	if s.dbTracer != nil {
		s.dbTracer.Terminate()
		errs = append(errs, s.recorder.Close())
	}

	s.closeBackend()

	return errors.Join(errs...)
}
