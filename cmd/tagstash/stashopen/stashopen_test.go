package stashopen_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/eventstream/kafka"
	"github.com/papercomputeco/tagstash/pkg/eventstream/nop"
	"github.com/papercomputeco/tagstash/pkg/logger"
	"github.com/papercomputeco/tagstash/pkg/storage/inmemory"
	"github.com/papercomputeco/tagstash/pkg/storage/sqlite"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("Open", func() {
	var (
		ctx       context.Context
		v         *viper.Viper
		configDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		configDir = GinkgoT().TempDir()

		var err error
		v, err = config.InitViper(configDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("opens the in-memory driver", func() {
		v.Set("storage.driver", config.DriverMemory)

		s, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		Expect(s.Driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		Expect(s.Publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))

		r, err := s.Service.Create(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.TagValues()).To(Equal([]string{"hello", "world"}))
	})

	It("creates the SQLite database in the config dir by default", func() {
		s, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		Expect(s.Driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(filepath.Join(configDir, "tagstash.db")).To(BeAnExistingFile())
	})

	It("applies the configured tag limits", func() {
		v.Set("storage.driver", config.DriverMemory)
		v.Set("tags.max_length", 3)
		v.Set("tags.max_per_record", 2)

		s, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		_, err = s.Service.Create(ctx, "long")
		var invalid *tag.InvalidTagError
		Expect(err).To(BeAssignableToTypeOf(invalid))

		_, err = s.Service.Create(ctx, "a b c")
		Expect(err).To(HaveOccurred())
	})

	It("requires a DSN for the postgres driver", func() {
		v.Set("storage.driver", config.DriverPostgres)

		_, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("storage.postgres_dsn is required")))
	})

	It("rejects an unknown driver", func() {
		v.Set("storage.driver", "mysql")

		_, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring(`unknown storage driver: "mysql"`)))
	})

	It("fails when kafka has no brokers", func() {
		v.Set("storage.driver", config.DriverMemory)
		v.Set("events.provider", config.EventsProviderKafka)

		_, err := stashopen.Open(ctx, v, configDir, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("at least one broker")))
	})
})

var _ = Describe("NewPublisher", func() {
	It("creates a kafka publisher without dialing", func() {
		v := viper.New()
		v.Set("events.provider", config.EventsProviderKafka)
		v.Set("events.brokers", []string{"localhost:9092"})

		p, err := stashopen.NewPublisher(v, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(p.Close()).To(Succeed())
	})

	It("rejects an unknown provider", func() {
		v := viper.New()
		v.Set("events.provider", "nats")

		_, err := stashopen.NewPublisher(v, logger.Nop())
		Expect(err).To(HaveOccurred())
	})
})
