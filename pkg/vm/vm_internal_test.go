package vm

import (
	"errors"
	"io"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func op(k Kind, arg int) Opcode {
	return Opcode{Kind: k, Arg: arg}
}

var _ = Describe("VM", func() {
	var (
		mockCtrl *gomock.Controller
		input    *MockReader
		output   *MockWriter
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		input = NewMockReader(mockCtrl)
		output = NewMockWriter(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newVM := func(program Program, size int) *VM {
		v, err := New(program, size)
		Expect(err).NotTo(HaveOccurred())
		v.Input = input
		v.Output = output
		return v
	}

	It("should reject a non-positive tape size", func() {
		_, err := New(nil, 0)
		Expect(errors.Is(err, ErrInvalidTapeSize)).To(BeTrue())
	})

	It("should terminate an empty program immediately", func() {
		v := newVM(nil, 8)

		Expect(v.Halted).To(BeTrue())
		Expect(v.Run()).To(Succeed())
		Expect(v.Steps).To(BeZero())
		Expect(v.Tape).To(Equal(make([]byte, 8)))
	})

	It("should skip an empty loop over a zero cell", func() {
		v := newVM(Program{op(OpJumpIfZero, 1), op(OpJumpUnlessZero, 0)}, 8)

		Expect(v.Run()).To(Succeed())
		Expect(v.Steps).To(Equal(uint64(1)))
		Expect(v.PC).To(Equal(2))
	})

	It("should wrap cell arithmetic", func() {
		v := newVM(Program{op(OpSub, 1)}, 4)
		Expect(v.Run()).To(Succeed())
		Expect(v.Tape[0]).To(Equal(byte(255)))

		v = newVM(Program{op(OpAdd, 255), op(OpAdd, 2)}, 4)
		Expect(v.Run()).To(Succeed())
		Expect(v.Tape[0]).To(Equal(byte(1)))
	})

	It("should move a cell's value into its neighbour", func() {
		// ++>+++<[->+<]
		v := newVM(Program{
			op(OpAdd, 2),
			op(OpMoveRight, 1),
			op(OpAdd, 3),
			op(OpMoveLeft, 1),
			op(OpJumpIfZero, 9),
			op(OpSub, 1),
			op(OpMoveRight, 1),
			op(OpAdd, 1),
			op(OpMoveLeft, 1),
			op(OpJumpUnlessZero, 4),
		}, 8)

		Expect(v.Run()).To(Succeed())
		Expect(v.Tape[0]).To(Equal(byte(0)))
		Expect(v.Tape[1]).To(Equal(byte(5)))
		Expect(v.DP).To(Equal(0))
		Expect(v.Halted).To(BeTrue())
	})

	It("should write every byte as it is produced", func() {
		v := newVM(Program{op(OpAdd, 'A'), op(OpWrite, 0), op(OpAdd, 1), op(OpWrite, 0)}, 4)

		gomock.InOrder(
			output.EXPECT().Write([]byte{'A'}).Return(1, nil),
			output.EXPECT().Write([]byte{'B'}).Return(1, nil),
		)

		Expect(v.Run()).To(Succeed())
	})

	It("should halt when the output fails", func() {
		v := newVM(Program{op(OpWrite, 0), op(OpAdd, 1)}, 4)
		output.EXPECT().Write(gomock.Any()).Return(0, errors.New("closed"))

		err := v.Run()

		Expect(err).To(MatchError(ContainSubstring("closed")))
		Expect(v.Halted).To(BeTrue())
		Expect(v.PC).To(Equal(0))
		Expect(v.Tape[0]).To(BeZero())
	})

	It("should store a read byte under the data pointer", func() {
		v := newVM(Program{op(OpMoveRight, 2), op(OpRead, 0)}, 4)
		input.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			p[0] = 'z'
			return 1, nil
		})

		Expect(v.Run()).To(Succeed())
		Expect(v.Tape[2]).To(Equal(byte('z')))
	})

	It("should report exhausted input", func() {
		v := newVM(Program{op(OpRead, 0)}, 4)
		input.EXPECT().Read(gomock.Any()).Return(0, io.EOF)

		err := v.Run()

		Expect(errors.Is(err, ErrInputExhausted)).To(BeTrue())
		Expect(v.Halted).To(BeTrue())
	})

	It("should report a data pointer moving left of the tape", func() {
		v := newVM(Program{op(OpAdd, 7), op(OpMoveLeft, 1)}, 4)

		err := v.Run()

		var boundsErr *TapeBoundsError
		Expect(errors.As(err, &boundsErr)).To(BeTrue())
		Expect(errors.Is(err, ErrTapeBounds)).To(BeTrue())
		Expect(boundsErr.PC).To(Equal(1))
		Expect(boundsErr.Pointer).To(Equal(-1))
		Expect(v.DP).To(Equal(0))
		Expect(v.Tape[0]).To(Equal(byte(7)))
	})

	It("should report a data pointer moving right of the tape", func() {
		v := newVM(Program{op(OpMoveRight, 3), op(OpMoveRight, 1)}, 4)

		err := v.Run()

		var boundsErr *TapeBoundsError
		Expect(errors.As(err, &boundsErr)).To(BeTrue())
		Expect(boundsErr.Pointer).To(Equal(4))
		Expect(boundsErr.Size).To(Equal(4))
		Expect(v.DP).To(Equal(3))
	})

	It("should report a pending read", func() {
		v := newVM(Program{op(OpAdd, 1), op(OpRead, 0)}, 4)
		Expect(v.NeedsInput()).To(BeFalse())

		Expect(v.Step()).To(Succeed())
		Expect(v.NeedsInput()).To(BeTrue())
	})

	It("should keep the tape across loaded programs", func() {
		v := newVM(Program{op(OpAdd, 3), op(OpMoveRight, 1)}, 4)
		Expect(v.Run()).To(Succeed())

		v.Load(Program{op(OpAdd, 2), op(OpMoveLeft, 1), op(OpAdd, 1)})
		Expect(v.Halted).To(BeFalse())
		Expect(v.Run()).To(Succeed())

		Expect(v.Tape[:2]).To(Equal([]byte{4, 2}))
		Expect(v.DP).To(Equal(0))
	})

	It("should clear the tape on reset", func() {
		v := newVM(Program{op(OpAdd, 3), op(OpMoveRight, 1), op(OpAdd, 1)}, 4)
		Expect(v.Run()).To(Succeed())

		v.Reset()

		Expect(v.Tape).To(Equal(make([]byte, 4)))
		Expect(v.DP).To(BeZero())
		Expect(v.PC).To(BeZero())
		Expect(v.Steps).To(BeZero())
		Expect(v.Halted).To(BeFalse())
	})
})
