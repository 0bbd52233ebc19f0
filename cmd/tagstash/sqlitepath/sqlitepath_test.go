package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		homeDir string
		cwd     string
		origCwd string
	)

	BeforeEach(func() {
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		homeDir, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		cwd, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		GinkgoT().Setenv("HOME", homeDir)
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		Expect(os.Chdir(cwd)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers the configured path", func() {
		path, err := ResolveSQLitePath(" /tmp/custom.db ", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("resolves an existing ~/.tagstash/tagstash.db", func() {
		dbPath := filepath.Join(homeDir, ".tagstash", "tagstash.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, nil, 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("prefers a local database over the home one", func() {
		for _, dir := range []string{cwd, homeDir} {
			Expect(os.MkdirAll(filepath.Join(dir, ".tagstash"), 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, ".tagstash", "tagstash.db"), nil, 0o644)).To(Succeed())
		}

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(".tagstash", "tagstash.db")))
	})

	It("places a new database in the config dir", func() {
		configDir := filepath.Join(cwd, "conf")

		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, "tagstash.db")))
		Expect(configDir).To(BeADirectory())
	})

	It("creates ~/.tagstash when nothing exists yet", func() {
		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".tagstash", "tagstash.db")))
	})
})
