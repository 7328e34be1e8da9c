package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/neat/cmd/neat/config"
	"github.com/papercomputeco/neat/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "neat-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .neat dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".neat"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(execute("set", "client.endpoint", "http://remote:8000")).To(Succeed())
			Expect(filepath.Join(tmpDir, ".neat", "config.toml")).To(BeARegularFile())
			Expect(out.String()).To(ContainSubstring("client.endpoint"))
			Expect(out.String()).To(ContainSubstring("http://remote:8000"))
		})

		It("prints the normalized value", func() {
			Expect(execute("set", "client.timeout", "120s")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("2m0s"))
		})

		It("creates ~/.neat when no config directory exists", func() {
			Expect(os.RemoveAll(filepath.Join(tmpDir, ".neat"))).To(Succeed())
			home := filepath.Join(tmpDir, "home")
			GinkgoT().Setenv("HOME", home)

			Expect(execute("set", "chat.mode", "line")).To(Succeed())

			cfger, err := config.NewConfiger(filepath.Join(home, ".neat"))
			Expect(err).NotTo(HaveOccurred())
			val, err := cfger.GetConfigValue("chat.mode")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("line"))
		})

		It("rejects unknown keys", func() {
			err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("Valid keys: client.endpoint")))
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "client.endpoint")).NotTo(Succeed())
			Expect(execute("set")).NotTo(Succeed())
		})

		It("rejects invalid values", func() {
			Expect(execute("set", "chat.mode", "gui")).NotTo(Succeed())
			Expect(execute("set", "client.timeout", "soon")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "chat.image_dir", "/tmp/images")).To(Succeed())
			out.Reset()

			Expect(execute("get", "chat.image_dir")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("/tmp/images"))
		})

		It("marks unset keys", func() {
			Expect(execute("get", "log.file")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(execute("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists defaults when no config exists", func() {
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`client.endpoint = "http://localhost:8000"`))
			Expect(out.String()).To(ContainSubstring(`chat.mode       = "auto"`))
			Expect(out.String()).To(ContainSubstring("log.file        = <not set>"))
		})

		It("lists values that were set", func() {
			Expect(execute("set", "chat.plain", "true")).To(Succeed())
			out.Reset()

			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`chat.plain      = "true"`))
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).NotTo(Succeed())
		})
	})
})
