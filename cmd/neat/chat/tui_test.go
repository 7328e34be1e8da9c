package chatcmder

import (
	"context"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/logger"
)

var _ = Describe("chatModel", func() {
	var (
		ctx    context.Context
		events chan chat.Message
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
		events = make(chan chat.Message, eventBuffer)
	})

	newModel := func(streamer chat.Streamer) (chatModel, *chat.Session) {
		session := chat.NewSession(streamer, chat.WithObserver(func(m chat.Message) {
			events <- m
		}))
		DeferCleanup(session.Close)
		render := &renderer{logger: logger.Nop()}
		return newChatModel(ctx, session, events, render), session
	}

	update := func(m chatModel, msg bubbletea.Msg) (chatModel, bubbletea.Cmd) {
		next, cmd := m.Update(msg)
		return next.(chatModel), cmd
	}

	enter := bubbletea.KeyMsg{Type: bubbletea.KeyEnter}

	It("sends the input and shows the reply", func() {
		m, _ := newModel(replyStreamer{})
		m.input.SetValue("hi")

		m, cmd := update(m, enter)
		Expect(cmd).NotTo(BeNil())
		Expect(m.busy).To(BeTrue())
		Expect(m.View()).To(ContainSubstring("waiting for reply"))

		done := m.submit("hi")()
		Expect(done).To(BeAssignableToTypeOf(replyDoneMsg{}))
		Expect(done.(replyDoneMsg).err).NotTo(HaveOccurred())

		for range 3 {
			m, cmd = update(m, m.waitForMessage()())
			Expect(cmd).NotTo(BeNil())
		}
		Expect(m.lines).To(HaveLen(3))

		m, _ = update(m, done)
		Expect(m.busy).To(BeFalse())
		Expect(m.input.Value()).To(BeEmpty())

		view := m.View()
		Expect(view).To(ContainSubstring("you> hi"))
		Expect(view).To(ContainSubstring("thinking..."))
		Expect(view).To(ContainSubstring("hello!"))
	})

	It("ignores blank input", func() {
		m, _ := newModel(replyStreamer{})
		m.input.SetValue("   ")

		m, cmd := update(m, enter)
		Expect(cmd).To(BeNil())
		Expect(m.busy).To(BeFalse())
	})

	It("ignores enter while a reply is in flight", func() {
		m, _ := newModel(replyStreamer{})
		m.input.SetValue("hi")
		m, _ = update(m, enter)

		m, cmd := update(m, enter)
		Expect(cmd).To(BeNil())
		Expect(m.busy).To(BeTrue())
	})

	It("cancels the reply on esc and keeps the input", func() {
		streamer := newStalledStreamer()
		m, session := newModel(streamer)
		m.input.SetValue("hi")
		m, _ = update(m, enter)

		replies := make(chan bubbletea.Msg, 1)
		go func() { replies <- m.submit("hi")() }()
		Eventually(streamer.opened).Should(Receive())
		Expect(session.Busy()).To(BeTrue())

		m, _ = update(m, bubbletea.KeyMsg{Type: bubbletea.KeyEsc})

		var done bubbletea.Msg
		Eventually(replies).Should(Receive(&done))
		Expect(done.(replyDoneMsg).err).To(MatchError(context.Canceled))

		m, _ = update(m, done)
		Expect(m.busy).To(BeFalse())
		Expect(m.input.Value()).To(Equal("hi"))
		Expect(session.State().Messages[1]).To(Equal(chat.NewBotMessage("request canceled", chat.TypeError)))
	})

	It("closes the session before quitting", func() {
		m, session := newModel(replyStreamer{})

		_, cmd := update(m, bubbletea.KeyMsg{Type: bubbletea.KeyCtrlC})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
		Expect(session.Send(ctx, "hi")).To(MatchError(chat.ErrClosed))
	})

	It("fits the viewport to the window", func() {
		m, _ := newModel(replyStreamer{})

		m, _ = update(m, bubbletea.WindowSizeMsg{Width: 100, Height: 40})
		Expect(m.viewport.Width).To(Equal(100))
		Expect(m.viewport.Height).To(Equal(40 - chrome))
		Expect(m.render.width).To(Equal(100))
	})
})
