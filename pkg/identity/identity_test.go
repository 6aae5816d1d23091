package identity_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/identity"
)

var _ = Describe("identity", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "identity-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("FileProvider", func() {
		It("generates an ID on first use", func() {
			p := identity.NewFileProvider(tmpDir)
			id, err := p.ClientID()
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())
		})

		It("persists the ID to the state file", func() {
			p := identity.NewFileProvider(tmpDir)
			_, err := p.ClientID()
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(tmpDir, "identity.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("client_id"))
		})

		It("returns the same ID across calls", func() {
			p := identity.NewFileProvider(tmpDir)
			first, err := p.ClientID()
			Expect(err).NotTo(HaveOccurred())

			second, err := p.ClientID()
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("returns the same ID across provider instances", func() {
			first, err := identity.NewFileProvider(tmpDir).ClientID()
			Expect(err).NotTo(HaveOccurred())

			second, err := identity.NewFileProvider(tmpDir).ClientID()
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("Static", func() {
		It("always reports the given ID", func() {
			p := identity.Static("client-123")
			id, err := p.ClientID()
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("client-123"))
		})
	})
})
