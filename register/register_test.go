package register

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("S5933", func() {
	var (
		mockCtrl *gomock.Controller
		io       *MockAccessor
		regs     *S5933
	)

	const base uint16 = 0x300

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		io = NewMockAccessor(mockCtrl)
		regs = NewS5933(io, base)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should read the status register", func() {
		io.EXPECT().In32(base + AGCSTS).
			Return(uint32(StatusReadFIFOEmpty | StatusWriteFIFOEmpty))

		status := regs.ReadStatus()

		Expect(status.ReadFIFOEmpty()).To(BeTrue())
		Expect(status.WriteFIFOFull()).To(BeFalse())
	})

	It("should read a 1 byte chunk with an 8-bit access", func() {
		io.EXPECT().In8(base + AFIFO).Return(uint8(0x11))

		p := make([]byte, 1)
		regs.ReadChunk(p)

		Expect(p).To(Equal([]byte{0x11}))
	})

	It("should read a 2 byte chunk with a 16-bit access", func() {
		io.EXPECT().In16(base + AFIFO).Return(uint16(0x2211))

		p := make([]byte, 2)
		regs.ReadChunk(p)

		Expect(p).To(Equal([]byte{0x11, 0x22}))
	})

	It("should read a 3 byte chunk with three 8-bit accesses", func() {
		gomock.InOrder(
			io.EXPECT().In8(base+AFIFO).Return(uint8(0x11)),
			io.EXPECT().In8(base+AFIFO).Return(uint8(0x22)),
			io.EXPECT().In8(base+AFIFO).Return(uint8(0x33)),
		)

		p := make([]byte, 3)
		regs.ReadChunk(p)

		Expect(p).To(Equal([]byte{0x11, 0x22, 0x33}))
	})

	It("should read a 4 byte chunk with a 32-bit access", func() {
		io.EXPECT().In32(base + AFIFO).Return(uint32(0x44332211))

		p := make([]byte, 4)
		regs.ReadChunk(p)

		Expect(p).To(Equal([]byte{0x11, 0x22, 0x33, 0x44}))
	})

	It("should write chunks with matching access widths", func() {
		gomock.InOrder(
			io.EXPECT().Out8(base+AFIFO, uint8(0x11)),
			io.EXPECT().Out16(base+AFIFO, uint16(0x2211)),
			io.EXPECT().Out8(base+AFIFO, uint8(0x11)),
			io.EXPECT().Out8(base+AFIFO, uint8(0x22)),
			io.EXPECT().Out8(base+AFIFO, uint8(0x33)),
			io.EXPECT().Out32(base+AFIFO, uint32(0x44332211)),
		)

		regs.WriteChunk([]byte{0x11})
		regs.WriteChunk([]byte{0x11, 0x22})
		regs.WriteChunk([]byte{0x11, 0x22, 0x33})
		regs.WriteChunk([]byte{0x11, 0x22, 0x33, 0x44})
	})

	It("should panic on chunks that are empty or too wide", func() {
		Expect(func() { regs.ReadChunk(nil) }).To(Panic())
		Expect(func() { regs.WriteChunk(make([]byte, 5)) }).To(Panic())
	})

	It("should reset the FIFOs and then mask interrupts", func() {
		gomock.InOrder(
			io.EXPECT().Out32(base+AGCSTS, GCSTSReset),
			io.EXPECT().Out32(base+AINT, IntInterruptMask),
		)

		regs.Reset()
	})
})

var _ = Describe("Status", func() {
	It("should name the flags that are set", func() {
		s := StatusWriteFIFOFull | StatusReadFIFOEmpty

		Expect(s.String()).To(Equal("0x00000021[WFULL|REMPTY]"))
	})
})
