package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/transfer"
)

// Bytes shown when a read is not saved to a file.
const dumpLimit = 256

func newReadCommand(opts *options) *cobra.Command {
	var (
		size string
		out  string
	)

	c := &cobra.Command{
		Use:   "read",
		Short: "Read bytes from the board FIFO.",
		Long: `Read moves bytes from the inbound FIFO of the board into memory. ` +
			`On the simulated board a peer streams the pattern 0, 1, 2, ... ` +
			`into the FIFO.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			n, err := parseSize(size)
			if err != nil {
				return err
			}

			s, err := openSession(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			if s.board != nil {
				err = s.startPeer(pattern(n), io.Discard, opts.cfg.Sim.PeerRate)
				if err != nil {
					return err
				}
			}

			buf := make([]byte, n)

			start := time.Now()
			moved, err := s.do(cmd.Context(), device.CodeReadDMA, buf)
			elapsed := time.Since(start)

			if err != nil {
				reportPartial(cmd.ErrOrStderr(), err, moved)
				return err
			}

			transferReport(cmd.OutOrStdout(), "read", moved, elapsed)

			return saveRead(cmd.OutOrStdout(), out, buf[:moved])
		},
	}

	c.Flags().StringVar(&size, "size", "4KiB", "number of bytes to read")
	c.Flags().StringVar(&out, "out", "",
		"file to store the data in, the data is hex dumped when empty")

	return c
}

func saveRead(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		if len(data) > dumpLimit {
			data = data[:dumpLimit]
		}

		_, err := io.WriteString(stdout, hex.Dump(data))

		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func newWriteCommand(opts *options) *cobra.Command {
	var (
		size string
		in   string
	)

	c := &cobra.Command{
		Use:   "write",
		Short: "Write bytes into the board FIFO.",
		Long: `Write moves bytes from a file, or a generated pattern, into ` +
			`the outbound FIFO of the board. On the simulated board a peer ` +
			`drains the FIFO.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			data, err := writeData(in, size)
			if err != nil {
				return err
			}

			s, err := openSession(opts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			sink := &countingWriter{}
			if s.board != nil {
				err = s.startPeer(nil, sink, opts.cfg.Sim.PeerRate)
				if err != nil {
					return err
				}
			}

			start := time.Now()
			moved, err := s.do(cmd.Context(), device.CodeWriteDMA, data)
			elapsed := time.Since(start)

			if err != nil {
				reportPartial(cmd.ErrOrStderr(), err, moved)
				return err
			}

			transferReport(cmd.OutOrStdout(), "wrote", moved, elapsed)

			if s.board != nil {
				s.waitDrained(cmd.Context())
				if err := s.stopPeer(); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "peer received %d bytes\n",
					sink.n)
			}

			return nil
		},
	}

	c.Flags().StringVar(&in, "in", "", "file whose content is written")
	c.Flags().StringVar(&size, "size", "",
		"number of pattern bytes to write")
	c.MarkFlagsMutuallyExclusive("in", "size")
	c.MarkFlagsOneRequired("in", "size")

	return c
}

func writeData(in, size string) ([]byte, error) {
	if in != "" {
		return os.ReadFile(in)
	}

	n, err := parseSize(size)
	if err != nil {
		return nil, err
	}

	return io.ReadAll(pattern(n))
}

func reportPartial(w io.Writer, err error, moved uint64) {
	if errors.Is(err, transfer.ErrCancelled) {
		fmt.Fprintf(w, "cancelled after %d bytes\n", moved)
	}
}

// waitDrained waits until the peer has taken everything out of the outbound
// FIFO.
func (s *session) waitDrained(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for s.board.Outbound() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type countingWriter struct {
	n uint64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += uint64(len(p))
	return len(p), nil
}
