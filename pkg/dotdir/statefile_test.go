package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/dotdir"
)

type fakeState struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

var _ = Describe("dotdir.Manager state files", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadState", func() {
		It("reports absent when no state file exists", func() {
			var state fakeState
			found, err := m.LoadState(tmpDir, "nope.json", &state)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("loads a valid state file", func() {
			data := `{"name":"abc","items":["one","two"]}`
			err := os.WriteFile(filepath.Join(tmpDir, "thing.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			var state fakeState
			found, err := m.LoadState(tmpDir, "thing.json", &state)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(state.Name).To(Equal("abc"))
			Expect(state.Items).To(Equal([]string{"one", "two"}))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "bad.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			var state fakeState
			_, err = m.LoadState(tmpDir, "bad.json", &state)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveState", func() {
		It("rejects nil state", func() {
			Expect(m.SaveState(tmpDir, "nil.json", nil)).NotTo(Succeed())
		})

		It("overwrites an existing state file", func() {
			Expect(m.SaveState(tmpDir, "s.json", &fakeState{Name: "first"})).To(Succeed())
			Expect(m.SaveState(tmpDir, "s.json", &fakeState{Name: "second"})).To(Succeed())

			var state fakeState
			found, err := m.LoadState(tmpDir, "s.json", &state)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(state.Name).To(Equal("second"))
		})
	})

	Describe("ClearState", func() {
		It("removes the state file", func() {
			Expect(m.SaveState(tmpDir, "gone.json", &fakeState{Name: "x"})).To(Succeed())
			Expect(m.ClearState(tmpDir, "gone.json")).To(Succeed())

			var state fakeState
			found, err := m.LoadState(tmpDir, "gone.json", &state)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("succeeds when no state file exists", func() {
			Expect(m.ClearState(tmpDir, "never.json")).To(Succeed())
		})
	})

	Describe("round-trip", func() {
		It("saves and loads state correctly", func() {
			state := &fakeState{
				Name:  "conversation",
				Items: []string{"hello", "hi there", "tell me more"},
			}

			Expect(m.SaveState(tmpDir, "rt.json", state)).To(Succeed())

			loaded := &fakeState{}
			found, err := m.LoadState(tmpDir, "rt.json", loaded)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(loaded).To(Equal(state))
		})
	})
})
