package main

import (
	"fmt"
	"os"

	servecmder "github.com/papercomputeco/tagstash/cmd/tagstash/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()

	cmd.Use = "tagstashd"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .tagstash/ config directory")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
