package tag_test

import (
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("Factory", func() {
	var factory *tag.Factory

	BeforeEach(func() {
		factory = tag.NewFactory(tag.NewValidator(10))
	})

	Describe("New", func() {
		It("builds a normalized tag with its identity", func() {
			t, err := factory.New("  Café ")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Value).To(Equal("cafe"))
			Expect(t.ID).To(Equal(tag.Identity("cafe")))
		})

		It("returns EmptyTagError for blank input", func() {
			_, err := factory.New("   ")
			var emptyErr *tag.EmptyTagError
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
			Expect(emptyErr.Raw).To(Equal("   "))
		})

		It("returns InvalidTagError with reasons", func() {
			_, err := factory.New("abcdefghijklmnop")
			var invalidErr *tag.InvalidTagError
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
			Expect(invalidErr.Value).To(Equal("abcdefghijklmnop"))
			Expect(invalidErr.Reasons).NotTo(BeEmpty())
			Expect(invalidErr.Error()).To(ContainSubstring("at most 10"))
		})
	})

	Describe("FromContent", func() {
		It("collapses tokens into a set", func() {
			set, err := factory.FromContent("Beta alpha BETA")
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Values()).To(Equal([]string{"alpha", "beta"}))
		})

		It("is independent of token order", func() {
			a, err := factory.FromContent("a b c")
			Expect(err).NotTo(HaveOccurred())
			b, err := factory.FromContent("c a b")
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Key()).To(Equal(b.Key()))
		})

		It("fails on the first invalid token", func() {
			_, err := factory.FromContent("ok waytoolongtoken another-way-too-long")
			var invalidErr *tag.InvalidTagError
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
			Expect(invalidErr.Raw).To(Equal("waytoolongtoken"))
		})

		It("returns an empty set for blank content", func() {
			set, err := factory.FromContent("  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(set).To(BeEmpty())
		})
	})
})

var _ = Describe("Identity", func() {
	It("is a version 5 UUID in the tag namespace", func() {
		id := tag.Identity("deadline")
		Expect(id.Version()).To(BeEquivalentTo(5))
		Expect(id).To(Equal(tag.Identity("deadline")))
	})

	It("differs for different values", func() {
		Expect(tag.Identity("a")).NotTo(Equal(tag.Identity("b")))
	})

	It("is pinned to the published namespace", func() {
		Expect(tag.Namespace.String()).To(Equal("5b0c6e2a-3f41-4d8e-9a57-7c1e2f3d4b60"))
	})
})

var _ = Describe("Set", func() {
	It("keeps canonical order and membership", func() {
		set := tag.SetFromValues("b", "a", "b")
		Expect(set.Values()).To(Equal([]string{"a", "b"}))
		Expect(set.IDs()).To(Equal([]uuid.UUID{tag.Identity("a"), tag.Identity("b")}))
		Expect(set.Contains("a")).To(BeTrue())
		Expect(set.Contains("c")).To(BeFalse())
		Expect(set.ContainsID(tag.Identity("b"))).To(BeTrue())
	})

	It("builds the same key regardless of order and repetition", func() {
		Expect(tag.Key([]string{"y", "x", "y"})).To(Equal(tag.SetFromValues("x", "y").Key()))
	})
})
