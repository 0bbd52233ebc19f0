package tag_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("Validator", func() {
	var v tag.Validator

	BeforeEach(func() {
		v = tag.NewValidator(0)
	})

	It("defaults the maximum length", func() {
		Expect(v.MaxLength).To(Equal(tag.DefaultMaxLength))
	})

	It("accepts a normalized tag", func() {
		result := v.Validate("deadline")
		Expect(result.Valid).To(BeTrue())
		Expect(result.Violations).To(BeEmpty())
	})

	It("accepts a tag of exactly the maximum length", func() {
		Expect(v.Validate(strings.Repeat("я", tag.DefaultMaxLength)).Valid).To(BeTrue())
	})

	It("rejects empty tags", func() {
		result := v.Validate("")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Violations).To(ConsistOf(ContainSubstring("empty")))
	})

	It("counts length in characters rather than bytes", func() {
		result := tag.NewValidator(3).Validate("\u00e9\u00e9\u00e9")
		Expect(result.Valid).To(BeTrue())
	})

	It("rejects tags over the configured length", func() {
		result := tag.NewValidator(3).Validate("abcd")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Violations).To(ConsistOf(ContainSubstring("at most 3")))
	})

	It("accumulates every violation", func() {
		result := tag.NewValidator(2).Validate("a\x00 b")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Violations).To(HaveLen(3))
		Expect(result.Violations).To(ContainElement(ContainSubstring("control")))
		Expect(result.Violations).To(ContainElement(ContainSubstring("whitespace")))
		Expect(result.Violations).To(ContainElement(ContainSubstring("at most 2")))
	})

	It("rejects combining marks", func() {
		result := v.Validate("é")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Violations).To(ConsistOf(ContainSubstring("combining")))
	})

	It("rejects invalid UTF-8", func() {
		result := v.Validate("a\xffb")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Violations).To(ConsistOf(ContainSubstring("UTF-8")))
	})
})
