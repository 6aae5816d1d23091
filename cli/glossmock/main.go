package main

import (
	"os"

	servecmder "github.com/glosshq/gloss/cmd/gloss/serve"
)

func main() {
	cmd := servecmder.NewBackendCmd()
	cmd.Use = "glossmock"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
