package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/tagstash/internal/dagger"
)

// binaries are the main packages shipped in a build.
var binaries = []string{"./cli/tagstash", "./cli/tagstashd"}

// Build and return directory of go binaries
//
// The sqlite driver needs cgo, so each architecture builds natively in a
// container of that platform rather than cross-compiling.
func (t *Tagstash) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	platforms := []dagger.Platform{"linux/amd64", "linux/arm64"}

	outputs := dag.Directory()

	for _, platform := range platforms {
		path := string(platform) + "/"

		build := t.goContainer(platform)
		for _, pkg := range binaries {
			build = build.WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, pkg})
		}

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (t *Tagstash) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/tagstash/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/tagstash/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/tagstash/pkg/utils.Buildtime=%s'", buildtime),
	}

	return t.Build(ctx, strings.Join(ldflags, " "))
}
