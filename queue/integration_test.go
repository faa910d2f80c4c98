package queue

import (
	"bytes"
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pioxfer/board"
	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/register"
	"github.com/sarchlab/pioxfer/transfer"
)

var _ = Describe("Transfers against a simulated board", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		b      *board.Board
		dev    *device.Device
		q      *Sequential
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
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

		q = NewSequential(dev, 4).WithLogger(logging.Discard())
		q.Start(ctx)
	})

	AfterEach(func() {
		cancel()
		q.Stop()
	})

	startPeer := func(peer *board.Peer) {
		go func() {
			defer GinkgoRecover()
			Expect(peer.Run(ctx)).To(Succeed())
		}()
	}

	It("should read what the peer sends", func() {
		src := make([]byte, 4096)
		for i := range src {
			src[i] = byte(i * 7)
		}
		startPeer(board.NewPeer(b).
			WithSource(bytes.NewReader(src)).
			WithPollInterval(50 * time.Microsecond))

		buf := make([]byte, len(src))
		n, err := q.Do(ctx, device.CodeReadDMA, buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(uint64(len(src))))
		Expect(buf).To(Equal(src))
		Expect(b.Stats().Underruns).To(BeZero())
	})

	It("should write what the peer receives", func() {
		sink := new(bytes.Buffer)
		drained := make(chan struct{})
		peerCtx, stopPeer := context.WithCancel(ctx)
		go func() {
			defer close(drained)
			_ = board.NewPeer(b).
				WithSink(sink).
				WithPollInterval(50 * time.Microsecond).
				Run(peerCtx)
		}()

		data := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 128)
		n, err := q.Do(ctx, device.CodeWriteDMA, data)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(uint64(len(data))))

		Eventually(b.Outbound).Should(BeZero())
		stopPeer()
		<-drained

		Expect(sink.Bytes()).To(Equal(data))
		Expect(b.Stats().Overruns).To(BeZero())
	})

	It("should cancel a stalled read", func() {
		reqCtx, reqCancel := context.WithCancel(ctx)
		req := NewRequest(reqCtx, device.CodeReadDMA, make([]byte, 64))
		Expect(q.Submit(req)).To(Succeed())

		Eventually(dev.Busy).Should(BeTrue())
		reqCancel()

		n, err := req.Wait()
		Expect(err).To(MatchError(transfer.ErrCancelled))
		Expect(n).To(BeZero())
		Eventually(dev.Busy).Should(BeFalse())
	})

	It("should serve control requests between transfers", func() {
		version := make([]byte, 4)
		n, err := q.Do(ctx, device.CodeGetVersion, version)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(uint64(4)))
		Expect(version).To(Equal([]byte{0x0a, 0, 0x04, 0}))

		b.Feed([]byte{1, 2, 3, 4})
		_, err = q.Do(ctx, device.CodeReset, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Inbound()).To(BeZero())
		Expect(b.Interrupt()).To(Equal(register.IntInterruptMask))

		_, err = q.Do(ctx, device.CodeReadDMA, make([]byte, 3))
		Expect(err).To(MatchError(transfer.ErrInvalidParameter))
	})
})
