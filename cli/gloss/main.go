package main

import (
	"os"

	glosscmder "github.com/glosshq/gloss/cmd/gloss"
)

func main() {
	cmd := glosscmder.NewGlossCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
