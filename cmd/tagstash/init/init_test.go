package initcmder_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/tagstash/cmd/tagstash/init"
	"github.com/papercomputeco/tagstash/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "tagstash-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	execute := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("creates a .tagstash directory with a default config.toml", func() {
		Expect(execute()).To(Succeed())

		Expect(filepath.Join(tmpDir, ".tagstash")).To(BeADirectory())
		Expect(loadConfig(tmpDir)).To(Equal(config.NewDefaultConfig()))
	})

	It("keeps an existing config.toml", func() {
		dir := filepath.Join(tmpDir, ".tagstash")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api]\nlisten = \":7000\"\n"), 0o600)).To(Succeed())

		Expect(execute()).To(Succeed())

		Expect(loadConfig(tmpDir).API.Listen).To(Equal(":7000"))
	})

	It("does not touch other files when already initialized", func() {
		dir := filepath.Join(tmpDir, ".tagstash")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		dbFile := filepath.Join(dir, "tagstash.db")
		Expect(os.WriteFile(dbFile, []byte("data"), 0o644)).To(Succeed())

		Expect(execute()).To(Succeed())

		data, err := os.ReadFile(dbFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("data"))
	})

	Describe("--preset with storage presets", func() {
		It("writes the postgres preset", func() {
			Expect(execute("--preset", "postgres")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Storage.Driver).To(Equal(config.DriverPostgres))
			Expect(cfg.Storage.PostgresDSN).NotTo(BeEmpty())
		})

		It("overwrites the config when re-run with another preset", func() {
			Expect(execute("--preset", "postgres")).To(Succeed())
			Expect(execute("--preset", "memory")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Storage.Driver).To(Equal(config.DriverMemory))
			Expect(cfg.MCP.Enabled).To(BeFalse())
		})

		It("rejects unknown preset names", func() {
			err := execute("--preset", "oracle")
			Expect(err).To(MatchError(ContainSubstring("unknown preset")))
		})
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `version = 0

[storage]
driver = "postgres"
postgres_dsn = "postgres://team-db/stash"

[events]
provider = "kafka"
brokers = ["kafka:9092"]
`)
			}))
			defer server.Close()

			Expect(execute("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://team-db/stash"))
			Expect(cfg.Events.Brokers).To(Equal([]string{"kafka:9092"}))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			err := execute("--preset", server.URL)
			Expect(err).To(MatchError(ContainSubstring("HTTP 404")))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			defer server.Close()

			err := execute("--preset", server.URL)
			Expect(err).To(MatchError(ContainSubstring("parsing")))
		})

		It("returns error for unreachable URL", func() {
			err := execute("--preset", "http://127.0.0.1:1")
			Expect(err).To(MatchError(ContainSubstring("fetching remote config")))
		})
	})
})

// loadConfig reads config.toml from the .tagstash directory within baseDir.
func loadConfig(baseDir string) *config.Config {
	cfger, err := config.NewConfiger(filepath.Join(baseDir, ".tagstash"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg, err := cfger.LoadConfig()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return cfg
}
