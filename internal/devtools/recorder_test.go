package devtools_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apifolio/folio/internal/devtools"
	"github.com/apifolio/folio/internal/state"
)

var _ = Describe("Recorder", func() {
	var (
		store    *state.Store
		recorder *devtools.Recorder
	)

	BeforeEach(func() {
		store = state.NewStore(state.Defaults())
		recorder = devtools.NewRecorder(3)
		DeferCleanup(recorder.Attach(store))
	})

	It("records each transition with the resulting state", func() {
		store.SetTheme(state.ThemeLight)
		store.SetSelectedAPI("1")

		entries := recorder.Entries(0)
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Action).To(Equal("setTheme"))
		Expect(entries[0].Seq).To(BeEquivalentTo(1))
		Expect(entries[0].State.Theme).To(Equal(state.ThemeLight))
		Expect(entries[0].State.SelectedAPI).To(BeNil())
		Expect(entries[1].Payload).To(Equal(state.SetSelectedAPI{ID: ptr("1")}))
		Expect(entries[1].ID).NotTo(Equal(entries[0].ID))
	})

	It("keeps only the most recent entries, oldest first", func() {
		for i := 0; i < 5; i++ {
			store.SetLoading(i%2 == 0)
		}

		entries := recorder.Entries(0)
		Expect(entries).To(HaveLen(3))
		Expect([]uint64{entries[0].Seq, entries[1].Seq, entries[2].Seq}).To(Equal([]uint64{3, 4, 5}))
		Expect(recorder.Entries(2)).To(HaveLen(2))
		Expect(recorder.Entries(2)[1].Seq).To(BeEquivalentTo(5))
	})

	It("counts actions beyond the retained history", func() {
		for i := 0; i < 5; i++ {
			store.SetLoading(true)
		}
		store.ClearError()

		Expect(recorder.Counts()).To(Equal(map[string]uint64{"setLoading": 5, "setError": 1}))
	})

	It("notifies listeners until cancelled", func() {
		var seen []string
		cancel := recorder.Listen(func(e devtools.Entry) { seen = append(seen, e.Action) })

		store.SetTheme(state.ThemeLight)
		cancel()
		store.SetTheme(state.ThemeDark)

		Expect(seen).To(Equal([]string{"setTheme"}))
	})

	It("does not share state with the store", func() {
		store.SetAPIs([]state.APIDescriptor{{ID: "1", Status: state.StatusOnline}})
		store.UpdateAPIStatus("1", state.StatusOffline)

		entries := recorder.Entries(0)
		Expect(entries[0].State.APIs[0].Status).To(Equal(state.StatusOnline))
		Expect(entries[1].State.APIs[0].Status).To(Equal(state.StatusOffline))
	})
})

func ptr(s string) *string { return &s }
