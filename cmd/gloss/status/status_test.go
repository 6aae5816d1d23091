package statuscmder_test

import (
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	statuscmder "github.com/glosshq/gloss/cmd/gloss/status"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/history/file"
)

func newStatusTestCmd() *cobra.Command {
	cmd := statuscmder.NewStatusCmd()
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
	return cmd
}

var _ = Describe("Status Command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "status-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewStatusCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := statuscmder.NewStatusCmd()
			Expect(cmd.Use).To(Equal("status"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("has a --backend flag", func() {
			cmd := statuscmder.NewStatusCmd()
			Expect(cmd.Flags().Lookup("backend")).NotTo(BeNil())
		})

		It("rejects positional arguments", func() {
			cmd := newStatusTestCmd()
			cmd.SetArgs([]string{"extra", "--config-dir", tmpDir})

			Expect(cmd.Execute()).NotTo(Succeed())
		})
	})

	Describe("running", func() {
		It("succeeds when the backend is unreachable", func() {
			cmd := newStatusTestCmd()
			cmd.SetArgs([]string{"--backend", "http://127.0.0.1:1", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
		})

		It("succeeds against a healthy backend", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/ping" {
					w.WriteHeader(http.StatusOK)
					w.Write([]byte(`"pong"`))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			}))
			defer backend.Close()

			store := file.New(tmpDir)
			Expect(store.SaveTrack(chat.TrackStandard, []chat.Message{
				{Role: chat.RoleUser, Content: "What does the study measure?"},
				{Role: chat.RoleAssistant, Content: "Effect of X on Y."},
			})).To(Succeed())

			cmd := newStatusTestCmd()
			cmd.SetArgs([]string{"--backend", backend.URL, "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
		})
	})
})
