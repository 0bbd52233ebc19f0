// Tagstash CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/tagstash/internal/dagger"
)

const postgresImage = "postgres:17-alpine"

// Tagstash is the main module for the tagstash CI/CD pipeline
type Tagstash struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Tagstash CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", ".tagstash"]
	source *dagger.Directory,
) *Tagstash {
	return &Tagstash{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// It is the shared foundation for tests, builds, and linting.
func (t *Tagstash) goContainer(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod-"+string(platform))).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the unit tests via "go test"
//
// +check
func (t *Tagstash) Test(ctx context.Context) (string, error) {
	return t.goContainer("").
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// TestPostgres runs the postgres driver tests against a postgres service
// container.
func (t *Tagstash) TestPostgres(ctx context.Context) (string, error) {
	db := dag.Container().
		From(postgresImage).
		WithEnvVariable("POSTGRES_USER", "tagstash").
		WithEnvVariable("POSTGRES_PASSWORD", "tagstash").
		WithEnvVariable("POSTGRES_DB", "tagstash").
		WithExposedPort(5432).
		AsService()

	return t.goContainer("").
		WithServiceBinding("db", db).
		WithEnvVariable("TAGSTASH_TEST_POSTGRES_DSN", "postgres://tagstash:tagstash@db:5432/tagstash?sslmode=disable").
		WithExec([]string{"go", "test", "-v", "./pkg/storage/postgres/..."}).
		Stdout(ctx)
}
