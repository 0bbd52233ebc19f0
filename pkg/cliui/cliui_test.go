package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("returns the error of fn and marks the line", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")

			err := cliui.Step(&buf, "migrating", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("migrating"))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})
	})

	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses seconds otherwise", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("PrintRecord", func() {
		It("shows the identifier, a one-line preview and the tags", func() {
			r := &record.Record{
				ID:        uuid.New(),
				Content:   "first line\n" + strings.Repeat("x", 100),
				Tags:      tag.SetFromValues("first", "line"),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}

			var buf bytes.Buffer
			cliui.PrintRecord(&buf, r)

			out := buf.String()
			Expect(out).To(ContainSubstring(r.ID.String()))
			Expect(out).To(ContainSubstring("first line x"))
			Expect(out).To(ContainSubstring("..."))
			Expect(out).To(ContainSubstring("#first"))
			Expect(out).To(ContainSubstring("#line"))
		})
	})
})
