package tag_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("Normalize", func() {
	DescribeTable("canonical forms",
		func(raw, expected string) {
			Expect(tag.Normalize(raw)).To(Equal(expected))
		},
		Entry("lowercases", "Deadline", "deadline"),
		Entry("trims surrounding whitespace", "  deadline\t", "deadline"),
		Entry("strips acute accents", "Caf\u00e9", "cafe"),
		Entry("strips decomposed accents", "café", "cafe"),
		Entry("strips umlauts", "Über", "uber"),
		Entry("keeps cyrillic letters", "ПРОЕКТ", "проект"),
		Entry("keeps letters without marks", "Понедельник", "понедельник"),
		Entry("collapses inner whitespace", "a \t\n b", "a b"),
		Entry("keeps punctuation", "C++", "c++"),
		Entry("returns empty for blank input", " \t\n", ""),
		Entry("returns empty for empty input", "", ""),
	)

	It("maps differently cased and accented spellings to the same value", func() {
		Expect(tag.Normalize("RÉSUMÉ")).To(Equal(tag.Normalize("resume")))
	})

	It("is stable when applied twice", func() {
		for _, raw := range []string{"Crème Brûlée", "ǅemal", "İstanbul", "  x  "} {
			once := tag.Normalize(raw)
			Expect(tag.Normalize(once)).To(Equal(once), "input %q", raw)
		}
	})
})

var _ = Describe("Parse", func() {
	It("splits on whitespace and keeps order", func() {
		Expect(tag.Parse("проект deadline  понедельник")).To(Equal([]string{"проект", "deadline", "понедельник"}))
	})

	It("keeps repeated tokens", func() {
		Expect(tag.Parse("a b a")).To(Equal([]string{"a", "b", "a"}))
	})

	It("returns an empty slice for blank content", func() {
		tokens := tag.Parse("   \n\t ")
		Expect(tokens).NotTo(BeNil())
		Expect(tokens).To(BeEmpty())
	})

	It("treats quotes as ordinary characters", func() {
		Expect(tag.Parse(`"two words"`)).To(Equal([]string{`"two`, `words"`}))
	})
})
