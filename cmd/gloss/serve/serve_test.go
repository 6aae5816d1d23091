package servecmder

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Serve Command", func() {
	Describe("NewServeCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := NewServeCmd()
			Expect(cmd.Use).To(Equal("serve"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("registers backend and mcp subcommands", func() {
			cmd := NewServeCmd()

			names := make([]string, 0, 2)
			for _, sub := range cmd.Commands() {
				names = append(names, sub.Name())
			}

			Expect(names).To(ContainElement("backend"))
			Expect(names).To(ContainElement("mcp"))
		})

		It("has listen, quota, and delay flags", func() {
			cmd := NewServeCmd()
			Expect(cmd.Flags().Lookup("listen")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("quota")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("delay")).NotTo(BeNil())
		})

		It("defaults the listen address from config", func() {
			cmd := NewServeCmd()
			Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8787"))
		})
	})

	Describe("backend subcommand", func() {
		It("carries the same serving flags as the parent", func() {
			cmd := NewBackendCmd()
			Expect(cmd.Flags().Lookup("listen")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("quota")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("delay")).NotTo(BeNil())
		})
	})

	Describe("mcp subcommand", func() {
		It("has backend, mcp-listen, and history-driver flags", func() {
			cmd := newMCPCmd()
			Expect(cmd.Flags().Lookup("backend")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("mcp-listen")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("history-driver")).NotTo(BeNil())
		})

		It("defaults the MCP listen address from config", func() {
			cmd := newMCPCmd()
			Expect(cmd.Flags().Lookup("mcp-listen").DefValue).To(Equal(":8090"))
		})
	})

	Describe("localURL", func() {
		It("maps a bare port to localhost", func() {
			Expect(localURL(":8787")).To(Equal("http://localhost:8787"))
		})

		It("maps the wildcard addresses to localhost", func() {
			Expect(localURL("0.0.0.0:8787")).To(Equal("http://localhost:8787"))
			Expect(localURL("[::]:8787")).To(Equal("http://localhost:8787"))
		})

		It("keeps explicit hosts", func() {
			Expect(localURL("127.0.0.1:9000")).To(Equal("http://127.0.0.1:9000"))
		})
	})
})
