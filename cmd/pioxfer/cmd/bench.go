package cmd

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sarchlab/pioxfer/board"
	"github.com/sarchlab/pioxfer/device"
)

type benchResult struct {
	Size        int
	Count       int
	ReadBytes   uint64
	WriteBytes  uint64
	ReadTime    time.Duration
	WriteTime   time.Duration
	Stalls      uint64
	Checkpoints uint64
	Board       board.Stats
}

func newBenchCommand(opts *options) *cobra.Command {
	var (
		size     string
		count    int
		peerRate string
	)

	c := &cobra.Command{
		Use:   "bench",
		Short: "Measure read and write throughput on the simulated board.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			n, err := parseSize(size)
			if err != nil {
				return err
			}

			if count <= 0 {
				return errors.New("count must be positive")
			}

			peerBps := opts.cfg.Sim.PeerRate
			if cmd.Flags().Changed("peer-rate") {
				r, err := humanize.ParseBytes(peerRate)
				if err != nil {
					return err
				}

				peerBps = r
			}

			s, err := openSession(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			if s.board == nil {
				return errors.New("bench needs the simulated board")
			}

			if err := s.startPeer(pattern(n*count), io.Discard, peerBps); err != nil {
				return err
			}

			res, err := s.bench(cmd.Context(), n, count)
			if err != nil {
				return err
			}

			benchReport(cmd.OutOrStdout(), res)

			return nil
		},
	}

	c.Flags().StringVar(&size, "size", "64KiB", "bytes per transfer")
	c.Flags().IntVar(&count, "count", 16,
		"number of transfers in each direction")
	c.Flags().StringVar(&peerRate, "peer-rate", "0",
		"bytes per second the peer moves, 0 for no limit")

	return c
}

func (s *session) bench(
	ctx context.Context,
	size, count int,
) (benchResult, error) {
	res := benchResult{Size: size, Count: count}
	buf := make([]byte, size)

	start := time.Now()
	for i := 0; i < count; i++ {
		n, err := s.do(ctx, device.CodeReadDMA, buf)
		res.ReadBytes += n
		if err != nil {
			return res, err
		}
	}
	res.ReadTime = time.Since(start)

	start = time.Now()
	for i := 0; i < count; i++ {
		n, err := s.do(ctx, device.CodeWriteDMA, buf)
		res.WriteBytes += n
		if err != nil {
			return res, err
		}
	}
	s.waitDrained(ctx)
	res.WriteTime = time.Since(start)

	res.Stalls = s.steps.GetStepCount("stall")
	res.Checkpoints = s.steps.GetStepCount("checkpoint")
	res.Board = s.board.Stats()

	return res, nil
}

func benchReport(w io.Writer, res benchResult) {
	p := message.NewPrinter(language.English)

	p.Fprint(w, "\nBENCH REPORT\n")
	p.Fprintf(w, " Transfers:         %d x %s in each direction\n",
		res.Count, humanize.IBytes(uint64(res.Size)))
	p.Fprintf(w, " Read:              %d bytes in %s (%s)\n",
		res.ReadBytes, res.ReadTime.Round(time.Microsecond),
		rate(res.ReadBytes, res.ReadTime))
	p.Fprintf(w, " Write:             %d bytes in %s (%s)\n",
		res.WriteBytes, res.WriteTime.Round(time.Microsecond),
		rate(res.WriteBytes, res.WriteTime))
	p.Fprintf(w, " Stalls:            %d\n", res.Stalls)
	p.Fprintf(w, " Checkpoints:       %d\n", res.Checkpoints)
	p.Fprintf(w, " FIFO accesses:     %d reads, %d writes\n",
		res.Board.FIFOReads, res.Board.FIFOWrites)
	p.Fprintf(w, " Status reads:      %d\n", res.Board.StatusReads)
	p.Fprintf(w, " Underruns:         %d\n", res.Board.Underruns)
	p.Fprintf(w, " Overruns:          %d\n", res.Board.Overruns)
}
