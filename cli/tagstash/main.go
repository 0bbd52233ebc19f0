package main

import (
	"os"

	tagstashcmder "github.com/papercomputeco/tagstash/cmd/tagstash"
)

func main() {
	cmd := tagstashcmder.NewTagstashCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
