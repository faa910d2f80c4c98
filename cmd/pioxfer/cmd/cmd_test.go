package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing/iotest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pioxfer/config"
	"github.com/sarchlab/pioxfer/datarecording"
	"github.com/sarchlab/pioxfer/transfer"
)

func run(args ...string) (string, error) {
	root := NewRootCommand()

	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

var _ = Describe("Commands", func() {
	It("should print the interface version", func() {
		out, err := run("version")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("S5933DK1: interface version 4.10 (0x0004000A)\n"))
	})

	It("should reset the board", func() {
		out, err := run("reset")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("board reset"))
	})

	It("should read the peer's pattern", func() {
		out, err := run("read", "--size", "64")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("read 64 bytes (64 B)"))
		Expect(out).To(ContainSubstring(
			"00000000  00 01 02 03 04 05 06 07  08 09 0a 0b 0c 0d 0e 0f"))
	})

	It("should save what it reads", func() {
		path := filepath.Join(GinkgoT().TempDir(), "data.bin")

		_, err := run("read", "--size", "1KiB", "--out", path)
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(HaveLen(1024))
		for i, b := range data {
			Expect(b).To(Equal(byte(i)))
		}
	})

	It("should reject sizes that are not whole words", func() {
		_, err := run("read", "--size", "6")

		Expect(err).To(MatchError(transfer.ErrInvalidParameter))
	})

	It("should write a pattern to the peer", func() {
		out, err := run("write", "--size", "1KiB")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("wrote 1,024 bytes (1.0 KiB)"))
		Expect(out).To(ContainSubstring("peer received 1024 bytes"))
	})

	It("should write a file to the peer", func() {
		path := filepath.Join(GinkgoT().TempDir(), "in.bin")
		Expect(os.WriteFile(path, []byte("0123456789abcdef"), 0o644)).
			To(Succeed())

		out, err := run("write", "--in", path)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("peer received 16 bytes"))
	})

	It("should want exactly one data source for a write", func() {
		_, err := run("write")
		Expect(err).To(HaveOccurred())

		_, err = run("write", "--in", "x", "--size", "4")
		Expect(err).To(HaveOccurred())
	})

	It("should refuse an unknown backend", func() {
		_, err := run("--backend", "pci", "version")

		Expect(err).To(HaveOccurred())
	})

	It("should run a benchmark", func() {
		out, err := run("bench", "--size", "1KiB", "--count", "4")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("BENCH REPORT"))
		Expect(out).To(ContainSubstring(" Read:              4,096 bytes"))
		Expect(out).To(ContainSubstring(" Write:             4,096 bytes"))
		Expect(out).To(ContainSubstring(" Underruns:         0\n"))
		Expect(out).To(ContainSubstring(" Overruns:          0\n"))
	})

	It("should list recorded transfers", func() {
		rec := filepath.Join(GinkgoT().TempDir(), "rec")

		_, err := run("--record", rec, "write", "--size", "64")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("trace", rec+".sqlite3")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("ID"))
		Expect(out).To(ContainSubstring("S5933DK1"))
		Expect(out).To(ContainSubstring("write"))
		Expect(out).To(ContainSubstring("Success"))
		Expect(out).To(ContainSubstring("1 of 1 transfers\n"))
		Expect(out).To(ContainSubstring("checkpoint: 15 steps in 1 transfers\n"))
	})

	It("should refuse to overwrite a recording", func() {
		rec := filepath.Join(GinkgoT().TempDir(), "rec")

		_, err := run("--record", rec, "write", "--size", "64")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("--record", rec, "write", "--size", "64")
		Expect(err).To(MatchError(datarecording.ErrRecordingExists))
	})

	It("should filter recorded transfers", func() {
		rec := filepath.Join(GinkgoT().TempDir(), "rec")

		_, err := run("--record", rec, "write", "--size", "64")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("trace", rec+".sqlite3", "--result", "Cancelled")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("0 of 0 transfers\n"))
		Expect(out).NotTo(ContainSubstring("Success"))
	})
})

var _ = Describe("Helpers", func() {
	DescribeTable("parseSize",
		func(s string, expected int) {
			n, err := parseSize(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(expected))
		},
		Entry("plain", "4096", 4096),
		Entry("binary unit", "4KiB", 4096),
		Entry("decimal unit", "1kB", 1000),
	)

	It("should reject bad sizes", func() {
		_, err := parseSize("lots")
		Expect(err).To(HaveOccurred())

		_, err = parseSize("2GiB")
		Expect(err).To(HaveOccurred())
	})

	It("should produce the byte pattern", func() {
		data, err := io.ReadAll(pattern(300))

		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(HaveLen(300))
		Expect(data[255]).To(Equal(byte(255)))
		Expect(data[256]).To(Equal(byte(0)))
	})

	It("should format rates", func() {
		Expect(rate(2048, time.Second)).To(Equal("2.0 KiB/s"))
		Expect(rate(2048, 0)).To(Equal("n/a"))
	})
})

var _ = Describe("Session", func() {
	It("should report how the peer stopped when closed", func() {
		cfg := config.Default()

		s, err := openSession(&cfg)
		Expect(err).NotTo(HaveOccurred())

		broken := errors.New("source unplugged")
		Expect(s.startPeer(iotest.ErrReader(broken), io.Discard, 0)).
			To(Succeed())

		Expect(s.Close()).To(MatchError(broken))
	})
})
