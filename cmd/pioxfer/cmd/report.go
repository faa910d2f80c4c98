package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// parseSize accepts byte counts such as "4096", "64KiB" or "1MB". Transfers
// move whole 32-bit words, but the size is passed on as given so that the
// device decides what it accepts.
func parseSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if n > 1<<30 {
		return 0, fmt.Errorf("size %s is larger than 1 GiB", humanize.IBytes(n))
	}

	return int(n), nil
}

// patternReader yields the byte sequence 0, 1, 2, ... 255, 0, 1, ...
type patternReader struct {
	next byte
}

func (r *patternReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}

	return len(p), nil
}

func pattern(n int) io.Reader {
	return io.LimitReader(&patternReader{}, int64(n))
}

func rate(bytes uint64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}

	perSecond := float64(bytes) / elapsed.Seconds()

	return humanize.IBytes(uint64(perSecond)) + "/s"
}

// transferReport prints the outcome of one transfer.
func transferReport(
	w io.Writer,
	verb string,
	n uint64,
	elapsed time.Duration,
) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s %d bytes (%s) in %s, %s\n",
		verb, n, humanize.IBytes(n), elapsed.Round(time.Microsecond),
		rate(n, elapsed))
}
