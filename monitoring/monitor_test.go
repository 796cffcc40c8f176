package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("Monitor", func() {
	var (
		m          *Monitor
		translator *vm.Translator
	)

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		translator = vm.MakeBuilder().Build("VM")
		m.RegisterTranslator(translator)
	})

	It("should list translators", func() {
		m.RegisterTranslator(vm.MakeBuilder().Build("Other"))

		rec := do(http.MethodGet, "/api/list_translators")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["VM", "Other"]`))
	})

	It("should refuse duplicated names", func() {
		Expect(func() {
			m.RegisterTranslator(vm.MakeBuilder().Build("VM"))
		}).To(Panic())
	})

	It("should translate", func() {
		rec := do(http.MethodPost, "/api/translate/VM/3065")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var record map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &record)).To(Succeed())
		Expect(record["page_number"]).To(BeEquivalentTo(2))
		Expect(record["offset"]).To(BeEquivalentTo(1017))
		Expect(record["outcome"]).To(Equal("fault_resolved"))
		Expect(record["frame_number"]).To(BeEquivalentTo(0))
		Expect(record["physical_address"]).To(BeEquivalentTo(1017))

		Expect(translator.History()).To(HaveLen(1))
	})

	It("should report exhaustion with null frame", func() {
		for _, addr := range []string{"0", "1024", "2048", "3072"} {
			do(http.MethodPost, "/api/translate/VM/"+addr)
		}

		rec := do(http.MethodPost, "/api/translate/VM/4096")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var record map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &record)).To(Succeed())
		Expect(record["outcome"]).To(Equal("fault_exhausted"))
		Expect(record).To(HaveKeyWithValue("frame_number", BeNil()))
		Expect(record).To(HaveKeyWithValue("physical_address", BeNil()))
	})

	It("should reject bad addresses", func() {
		rec := do(http.MethodPost, "/api/translate/VM/"+url.PathEscape("12a"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"kind":"invalid_input"`))

		rec = do(http.MethodPost, "/api/translate/VM/8193")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).
			To(ContainSubstring(`"kind":"address_out_of_range"`))

		Expect(translator.History()).To(BeEmpty())
	})

	It("should answer 404 for unknown translators", func() {
		rec := do(http.MethodPost, "/api/translate/Nope/1")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reset", func() {
		do(http.MethodPost, "/api/translate/VM/1")

		rec := do(http.MethodPost, "/api/reset/VM")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(translator.History()).To(BeEmpty())
		Expect(translator.NextFreeFrame()).To(BeZero())
	})

	It("should only reset on POST", func() {
		rec := do(http.MethodGet, "/api/reset/VM")

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should serve snapshots", func() {
		do(http.MethodPost, "/api/translate/VM/3065")

		rec := do(http.MethodGet, "/api/snapshot/VM")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var s struct {
			PageTable []struct {
				Assigned bool `json:"assigned"`
				Frame    *int `json:"frame"`
			} `json:"page_table"`
			NextFreeFrame int `json:"next_free_frame"`
			History       []struct {
				Seq int `json:"seq"`
			} `json:"history"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &s)).To(Succeed())
		Expect(s.PageTable).To(HaveLen(8))
		Expect(s.PageTable[2].Assigned).To(BeTrue())
		Expect(*s.PageTable[2].Frame).To(Equal(0))
		Expect(s.PageTable[3].Frame).To(BeNil())
		Expect(s.NextFreeFrame).To(Equal(1))
		Expect(s.History).To(HaveLen(1))
	})

	It("should serve stats", func() {
		do(http.MethodPost, "/api/translate/VM/1")
		do(http.MethodPost, "/api/translate/VM/2")

		rec := do(http.MethodGet, "/api/stats/VM")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{
			"translations": 2,
			"hits": 1,
			"faults": 1,
			"resolved": 1,
			"exhausted": 0,
			"free_frames": 3,
			"hit_ratio": 0.5
		}`))
	})

	It("should serialize a translator", func() {
		rec := do(http.MethodGet, "/api/component/VM")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should reject malformed field requests", func() {
		rec := do(http.MethodGet, "/api/field/"+url.PathEscape("{"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("replay", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)

		rec := do(http.MethodGet, "/api/progress")

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("replay"))
		Expect(bars[0]["finished"]).To(BeEquivalentTo(3))
		Expect(bars[0]["in_progress"]).To(BeEquivalentTo(1))

		m.CompleteProgressBar(bar)

		rec = do(http.MethodGet, "/api/progress")
		Expect(rec.Body.String()).To(MatchJSON(`[]`))
	})

	It("should report resources", func() {
		rec := do(http.MethodGet, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should start and stop a server", func() {
		addr, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Post(addr+"/api/translate/VM/5", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.StopServer(context.Background())).To(Succeed())
	})
})
