package chatcmder

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour/styles"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/cliui"
	"github.com/papercomputeco/neat/pkg/logger"
)

var _ = Describe("renderer", func() {
	var r *renderer

	BeforeEach(func() {
		r = &renderer{logger: logger.Nop()}
	})

	DescribeTable("renders each message kind",
		func(m chat.Message, want string) {
			Expect(r.render(m)).To(ContainSubstring(want))
		},
		Entry("user", chat.NewUserMessage("hi"), "you> hi"),
		Entry("thought", chat.NewBotMessage("thinking...", chat.TypeThought), "… thinking..."),
		Entry("function call", chat.NewBotMessage("search(q)", chat.TypeFunctionCall), "⚙ search(q)"),
		Entry("answer", chat.NewBotMessage("42", chat.TypeAnswer), "42"),
		Entry("plain", chat.NewBotMessage("hello!", chat.TypePlain), "hello!"),
		Entry("error", chat.NewBotMessage("request canceled", chat.TypeError), "request canceled"),
	)

	It("renders answers as markdown when enabled", func() {
		r.markdown = cliui.NewMarkdownRenderer(styles.DarkStyle)
		r.width = 60

		out := r.render(chat.NewBotMessage("# Title\n\nsome *text*", chat.TypeAnswer))
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("text"))
		Expect(out).NotTo(HavePrefix("\n"))
	})

	Describe("images", func() {
		var png []byte

		BeforeEach(func() {
			png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		})

		It("summarizes an image without saving it", func() {
			out := r.render(chat.NewBotMessage(base64.StdEncoding.EncodeToString(png), chat.TypeImage))
			Expect(out).To(ContainSubstring("image/png"))
			Expect(out).To(ContainSubstring("16 bytes"))
		})

		It("saves the image when a directory is set", func() {
			r.imageDir = filepath.Join(GinkgoT().TempDir(), "images")

			out := r.render(chat.NewBotMessage(base64.StdEncoding.EncodeToString(png), chat.TypeImage))
			Expect(out).To(ContainSubstring("saved to"))

			entries, err := os.ReadDir(r.imageDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(out).To(ContainSubstring(entries[0].Name()))
		})

		It("reports undecodable image data", func() {
			out := r.render(chat.NewBotMessage("!!not base64!!", chat.TypeImage))
			Expect(out).To(ContainSubstring("unreadable image"))
		})
	})
})
