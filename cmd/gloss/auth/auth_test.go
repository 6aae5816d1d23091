package authcmder_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	authcmder "github.com/glosshq/gloss/cmd/gloss/auth"
	"github.com/glosshq/gloss/pkg/credentials"
)

var _ = Describe("Auth Command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "auth-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("has login, logout, and status subcommands", func() {
			cmd := authcmder.NewAuthCmd()
			cmds := cmd.Commands()
			subcommands := make([]string, 0, len(cmds))
			for _, sub := range cmds {
				subcommands = append(subcommands, sub.Name())
			}
			Expect(subcommands).To(ContainElements("login", "logout", "status"))
		})
	})

	Describe("logout", func() {
		It("removes a stored token", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetToken(credentials.DefaultBackend, "tok-123")).To(Succeed())

			cmd := authcmder.NewAuthCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.SetArgs([]string{"logout", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())

			token, err := mgr.Token(credentials.DefaultBackend)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})

		It("succeeds when no token is stored", func() {
			cmd := authcmder.NewAuthCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.SetArgs([]string{"logout", "staging", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
		})
	})

	Describe("status", func() {
		It("runs without error when nothing is stored", func() {
			cmd := authcmder.NewAuthCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.SetArgs([]string{"status", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
		})

		It("runs without error with stored tokens", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetToken("staging", "tok-staging")).To(Succeed())

			cmd := authcmder.NewAuthCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.SetArgs([]string{"status", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
		})

		It("rejects positional arguments", func() {
			cmd := authcmder.NewAuthCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.SetArgs([]string{"status", "extra", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(HaveOccurred())
		})
	})
})
