package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/storage/postgres"
	"github.com/papercomputeco/tagstash/pkg/storage/storagetest"
)

const dsnEnv = "TAGSTASH_TEST_POSTGRES_DSN"

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		Skip(dsnEnv + " not set, skipping PostgreSQL tests")
	}
	return dsn
}

// freshDriver connects and resets the schema so every spec starts empty.
func freshDriver() *postgres.Driver {
	GinkgoHelper()

	ctx := context.Background()
	d, err := postgres.NewDriver(ctx, postgres.Config{DSN: connStr()})
	Expect(err).NotTo(HaveOccurred())
	Expect(d.MigrateDown(ctx)).To(Succeed())
	Expect(d.Migrate(ctx)).To(Succeed())
	return d
}

var _ = Describe("Driver", func() {
	storagetest.DriverSpecs(func() storage.Driver {
		return freshDriver()
	})
})

var _ = Describe("PostgreSQL specifics", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewDriver", func() {
		It("returns a connection error for an unreachable server", func() {
			start := time.Now()
			_, err := postgres.NewDriver(ctx, postgres.Config{
				DSN:            "host=127.0.0.1 port=1 user=bad dbname=bad sslmode=disable",
				ConnectTimeout: 500 * time.Millisecond,
			})
			Expect(err).To(HaveOccurred())
			Expect(storage.IsRetryable(err)).To(BeTrue())
			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
			fmt.Fprintf(GinkgoWriter, "expected error: %v\n", err)
		})

		It("rejects a malformed connection string", func() {
			_, err := postgres.NewDriver(ctx, postgres.Config{DSN: "postgres://%zz"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Engine errors", func() {
		var (
			d       *postgres.Driver
			fixture *storagetest.Fixture
		)

		BeforeEach(func() {
			d = freshDriver()
			fixture = storagetest.NewFixture(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		})

		AfterEach(func() {
			Expect(d.Close()).To(Succeed())
		})

		It("reports a reused identifier as a constraint violation, not a duplicate", func() {
			r := fixture.Record("first")
			Expect(d.Create(ctx, r)).To(Succeed())

			clash := fixture.Record("second")
			clash.ID = r.ID

			err := d.Create(ctx, clash)
			var violation *storage.ConstraintViolationError
			Expect(errors.As(err, &violation)).To(BeTrue())
			Expect(violation.Constraint).To(Equal("records_pkey"))
		})

		It("reports a cancelled context without hanging", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := d.Count(cancelled)
			Expect(err).To(HaveOccurred())
		})
	})
})
