package chat_test

import (
	"encoding/base64"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neat/pkg/chat"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var _ = Describe("SaveImage", func() {
	var dir string

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "images")
	})

	It("writes the decoded bytes with a sniffed extension", func() {
		m := chat.NewBotMessage(base64.StdEncoding.EncodeToString(pngHeader), chat.TypeImage)

		path, err := chat.SaveImage(dir, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Dir(path)).To(Equal(dir))
		Expect(filepath.Ext(path)).To(Equal(".png"))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(pngHeader))
	})

	It("uses the jpeg extension for jpeg data", func() {
		jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
		m := chat.NewBotMessage(base64.StdEncoding.EncodeToString(jpeg), chat.TypeImage)

		path, err := chat.SaveImage(dir, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Ext(path)).To(Equal(".jpg"))
	})

	It("gives every image a unique name", func() {
		m := chat.NewBotMessage(base64.StdEncoding.EncodeToString(pngHeader), chat.TypeImage)

		first, err := chat.SaveImage(dir, m)
		Expect(err).NotTo(HaveOccurred())
		second, err := chat.SaveImage(dir, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(first).NotTo(Equal(second))
	})

	It("rejects messages that are not images", func() {
		_, err := chat.SaveImage(dir, chat.NewBotMessage("hello", chat.TypePlain))
		Expect(err).To(MatchError(chat.ErrNotImage))
		Expect(dir).NotTo(BeADirectory())
	})
})
