package tagstashcmder_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tagstashcmder "github.com/papercomputeco/tagstash/cmd/tagstash"
	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/storage"
)

var _ = Describe("NewTagstashCmd", func() {
	It("registers every subcommand", func() {
		cmd := tagstashcmder.NewTagstashCmd()

		var names []string
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElements(
			"add", "config", "edit", "import", "init", "migrate",
			"rm", "search", "serve", "show", "tags", "version",
		))
	})

	It("has the global flags", func() {
		cmd := tagstashcmder.NewTagstashCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("gives serve its listen and events flags", func() {
		cmd := tagstashcmder.NewTagstashCmd()
		serve, _, err := cmd.Find([]string{"serve"})
		Expect(err).NotTo(HaveOccurred())

		for _, name := range []string{"listen", "storage-driver", "sqlite", "postgres-dsn", "events-provider", "events-topic", "log-file", "json-logs"} {
			Expect(serve.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("Record commands", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
	})

	run := func(stdin string, args ...string) (string, error) {
		cmd := tagstashcmder.NewTagstashCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", configDir))
		err := cmd.Execute()
		return out.String(), err
	}

	add := func(content string) string {
		out, err := run("", "add", "--quiet", content)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return strings.TrimSpace(out)
	}

	searchJSON := func(args ...string) *storage.Page {
		out, err := run("", append([]string{"search", "--json"}, args...)...)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		var page storage.Page
		ExpectWithOffset(1, json.Unmarshal([]byte(out), &page)).To(Succeed())
		return &page
	}

	It("stores records in the sqlite file under the config dir", func() {
		add("Café menu")
		Expect(filepath.Join(configDir, "tagstash.db")).To(BeAnExistingFile())
	})

	It("prints the stored record", func() {
		out, err := run("", "add", "Café", "menu")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Stored record"))
		Expect(out).To(ContainSubstring("#cafe"))
		Expect(out).To(ContainSubstring("#menu"))
	})

	It("reads content from stdin", func() {
		out, err := run("deploy checklist\n", "add", "--quiet")
		Expect(err).NotTo(HaveOccurred())

		out, err = run("", "show", "--json", strings.TrimSpace(out))
		Expect(err).NotTo(HaveOccurred())
		var r record.Record
		Expect(json.Unmarshal([]byte(out), &r)).To(Succeed())
		Expect(r.Content).To(Equal("deploy checklist"))
		Expect(r.TagValues()).To(Equal([]string{"checklist", "deploy"}))
	})

	It("rejects a record with the same tag set", func() {
		add("Café menu")
		_, err := run("", "add", "MENU cafe")
		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})

	It("searches by every query word", func() {
		add("alpha beta")
		add("alpha gamma")
		add("delta")

		page := searchJSON("alpha")
		Expect(page.Total).To(Equal(2))

		page = searchJSON("alpha", "beta")
		Expect(page.Total).To(Equal(1))
		Expect(page.Records[0].Content).To(Equal("alpha beta"))

		page = searchJSON("--limit", "1", "alpha")
		Expect(page.Records).To(HaveLen(1))
		Expect(page.HasMore).To(BeTrue())
	})

	It("searches by any query word with --any", func() {
		add("alpha beta")
		add("gamma")
		add("delta")

		page := searchJSON("--any", "beta", "gamma")
		Expect(page.Total).To(Equal(2))
	})

	It("prints ids with --quiet and a summary otherwise", func() {
		id := add("alpha beta")

		out, err := run("", "search", "--quiet", "alpha")
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(out)).To(Equal(id))

		out, err = run("", "search", "alpha")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("1-1 of 1"))

		out, err = run("", "search", "zeta")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No records found."))
	})

	It("rejects an unknown sort field", func() {
		_, err := run("", "search", "--sort-by", "relevance")
		Expect(err).To(MatchError(ContainSubstring("sort_by")))
	})

	It("shows a record by its exact tag set", func() {
		add("Café menu")

		out, err := run("", "show", "--tags", "menu", "CAFE")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Café menu"))

		_, err = run("", "show", "--tags", "menu")
		Expect(err).To(HaveOccurred())
	})

	It("rejects a malformed record id", func() {
		_, err := run("", "show", "not-a-uuid")
		Expect(err).To(MatchError(ContainSubstring("invalid record id")))
	})

	It("edits a record and retags it", func() {
		id := add("alpha beta")

		out, err := run("", "edit", id, "alpha", "beta", "gamma")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Updated record"))

		page := searchJSON("gamma")
		Expect(page.Total).To(Equal(1))
		Expect(page.Records[0].ID.String()).To(Equal(id))
	})

	It("deletes records", func() {
		first := add("alpha")
		second := add("beta")

		out, err := run("", "rm", first, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Deleted " + first))

		Expect(searchJSON().Total).To(Equal(0))

		_, err = run("", "rm", first)
		Expect(err).To(HaveOccurred())
	})

	It("lists tag statistics", func() {
		add("alpha beta")
		add("alpha gamma")

		out, err := run("", "tags", "--json")
		Expect(err).NotTo(HaveOccurred())
		var counts []storage.TagCount
		Expect(json.Unmarshal([]byte(out), &counts)).To(Succeed())
		Expect(counts[0]).To(Equal(storage.TagCount{Tag: "alpha", Count: 2}))
		Expect(counts).To(HaveLen(3))

		out, err = run("", "tags", "--limit", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("alpha"))
		Expect(out).NotTo(ContainSubstring("gamma"))
	})

	It("reports an empty store", func() {
		out, err := run("", "tags")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No tags yet."))
	})

	Describe("import", func() {
		It("imports every non-blank line of a file", func() {
			file := filepath.Join(configDir, "notes.txt")
			Expect(os.WriteFile(file, []byte("alpha beta\n\nalpha gamma\ndelta\n"), 0o600)).To(Succeed())

			out, err := run("", "import", file)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Imported"))
			Expect(searchJSON().Total).To(Equal(3))
		})

		It("imports from stdin", func() {
			_, err := run("alpha\nbeta\n", "import", "-")
			Expect(err).NotTo(HaveOccurred())
			Expect(searchJSON().Total).To(Equal(2))
		})

		It("stores nothing when an entry duplicates another", func() {
			_, err := run("alpha beta\ngamma\nBeta Alpha\n", "import", "-")
			Expect(err).To(MatchError(ContainSubstring("entry 3")))
			Expect(searchJSON().Total).To(Equal(0))
		})

		It("fails on an empty input", func() {
			_, err := run("\n\n", "import", "-")
			Expect(err).To(MatchError(ContainSubstring("nothing to import")))
		})
	})

	Describe("migrate", func() {
		It("drops and recreates the sqlite schema", func() {
			add("alpha")

			out, err := run("", "migrate", "down")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("sqlite"))

			_, err = run("", "migrate", "up")
			Expect(err).NotTo(HaveOccurred())
			Expect(searchJSON().Total).To(Equal(0))
		})

		It("refuses the memory driver", func() {
			_, err := run("", "migrate", "up", "--storage-driver", "memory")
			Expect(err).To(MatchError(ContainSubstring("memory driver")))
		})
	})

	It("keeps nothing between runs on the memory driver", func() {
		_, err := run("", "add", "--storage-driver", "memory", "alpha")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("", "search", "--json", "--storage-driver", "memory")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`"total": 0`))
	})
})
