package cliui_test

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/glamour/styles"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neat/pkg/cliui"
)

var _ = Describe("Mark", func() {
	It("returns the success mark for nil errors", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
	})

	It("returns the fail mark for errors", func() {
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	DescribeTable("formats durations",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("zero", time.Duration(0), "0ms"),
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("one second", time.Second, "1.0s"),
		Entry("fractional seconds", 3200*time.Millisecond, "3.2s"),
	)
})

var _ = Describe("MarkdownRenderer", func() {
	BeforeEach(func() {
		cliui.DisableColor()
	})

	It("renders markdown without color", func() {
		Expect(cliui.ColorEnabled()).To(BeFalse())

		out, err := cliui.NewMarkdownRenderer(styles.DarkStyle).Render("# Title\n\nsome **bold** text", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("bold"))
	})

	It("wraps at the given width", func() {
		out, err := cliui.NewMarkdownRenderer(styles.LightStyle).Render(strings.Repeat("word ", 20), 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(strings.TrimSpace(out), "\n")).To(BeNumerically(">=", 3))
	})

	It("renders repeatedly at different widths", func() {
		r := cliui.NewMarkdownRenderer(styles.DarkStyle)
		text := strings.Repeat("word ", 20)

		narrow, err := r.Render(text, 20)
		Expect(err).NotTo(HaveOccurred())
		wide, err := r.Render(text, 200)
		Expect(err).NotTo(HaveOccurred())
		again, err := r.Render(text, 20)
		Expect(err).NotTo(HaveOccurred())

		Expect(again).To(Equal(narrow))
		Expect(strings.Count(strings.TrimSpace(wide), "\n")).To(BeZero())
	})
})
