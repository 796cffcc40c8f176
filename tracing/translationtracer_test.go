package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("TranslationTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		backend    *MockDataRecorder
		tracer     *TranslationTracer
		translator *vm.Translator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable(TranslationTable, TranslationEntry{})
		backend.EXPECT().CreateTable(ResetTable, ResetEntry{})

		tracer = NewTranslationTracer(backend)
		translator = vm.MakeBuilder().
			WithNumFrames(1).
			WithHook(tracer).
			Build("VM")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record resolved faults", func() {
		backend.EXPECT().InsertData(TranslationTable, TranslationEntry{
			ID:              "1",
			Translator:      "VM",
			Seq:             1,
			LogicalAddress:  3065,
			PageNumber:      2,
			Offset:          1017,
			PageFaulted:     true,
			Outcome:         "fault_resolved",
			FrameNumber:     0,
			PhysicalAddress: 1017,
			Message: "Page Fault! Page is not loaded. " +
				"Loading Page 2 into Frame 0.",
		})

		_, err := translator.Translate(3065)

		Expect(err).NotTo(HaveOccurred())
	})

	It("should record unresolved faults with no frame", func() {
		backend.EXPECT().InsertData(TranslationTable, gomock.Any())
		backend.EXPECT().
			InsertData(TranslationTable, gomock.Any()).
			Do(func(_ string, entry any) {
				e := entry.(TranslationEntry)
				Expect(e.Outcome).To(Equal("fault_exhausted"))
				Expect(e.FrameNumber).To(Equal(int64(-1)))
				Expect(e.PhysicalAddress).To(Equal(int64(-1)))
			})

		_, _ = translator.Translate(0)
		_, _ = translator.Translate(1024)
	})

	It("should record resets", func() {
		backend.EXPECT().InsertData(TranslationTable, gomock.Any())
		backend.EXPECT().
			InsertData(ResetTable, gomock.Any()).
			Do(func(_ string, entry any) {
				e := entry.(ResetEntry)
				Expect(e.ID).To(Equal("2"))
				Expect(e.Translator).To(Equal("VM"))
				Expect(e.DroppedRecords).To(Equal(int64(1)))
			})

		_, _ = translator.Translate(0)
		translator.Reset()
	})

	It("should not record rejected addresses", func() {
		_, err := translator.Translate(1 << 20)

		Expect(err).To(MatchError(vm.ErrAddressOutOfRange))
	})
})

var _ = Describe("TranslationTracer with SQLite", func() {
	It("should write rows that can be read back", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder := datarecording.NewDataRecorder(path)
		tracer := NewTranslationTracer(recorder)

		translator := vm.MakeBuilder().WithHook(tracer).Build("VM")
		for _, addr := range []int64{3065, 3065, 0, 1024, 3072, 4096} {
			_, err := translator.Translate(addr)
			Expect(err).NotTo(HaveOccurred())
		}
		translator.Reset()

		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(TranslationTable, TranslationEntry{})
		reader.MapTable(ResetTable, ResetEntry{})

		rows, total, err := reader.Query(context.Background(),
			TranslationTable, datarecording.QueryParams{OrderBy: "Seq"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))
		Expect(rows[0].(*TranslationEntry).ID).To(Equal("1"))

		second := rows[1].(*TranslationEntry)
		Expect(second.Outcome).To(Equal("hit"))
		Expect(second.PhysicalAddress).To(Equal(int64(1017)))

		last := rows[5].(*TranslationEntry)
		Expect(last.PageNumber).To(Equal(int64(4)))
		Expect(last.FrameNumber).To(Equal(int64(-1)))

		resets, total, err := reader.Query(context.Background(),
			ResetTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))
		reset := resets[0].(*ResetEntry)
		Expect(reset.DroppedRecords).To(Equal(int64(6)))
		Expect(reset.ID).To(Equal("7"))
	})
})
