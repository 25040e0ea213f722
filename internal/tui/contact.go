package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"flight_atlas/internal/contact"
)

type contactResultMsg struct {
	id     int64
	queued int
	err    error
}

type outboxCountMsg struct {
	queued int
}

// contactScreen is the contact form. Validation runs locally and an
// invalid form is never queued.
type contactScreen struct {
	chrome    *chrome
	submitter *contact.Submitter

	inputs  []textinput.Model
	focus   int
	errs    contact.ValidationErrors
	status  string
	failed  bool
	sending bool
	queued  int
}

var contactLabels = map[string]string{
	contact.FieldName:    "Name",
	contact.FieldEmail:   "Email",
	contact.FieldSubject: "Subject",
	contact.FieldMessage: "Message",
}

func newContactScreen(ch *chrome, submitter *contact.Submitter) *contactScreen {
	s := &contactScreen{chrome: ch, submitter: submitter}
	for _, f := range contact.Fields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = contactLabels[f]
		input.CharLimit = 256
		if f == contact.FieldMessage {
			input.CharLimit = 2000
		}
		input.Width = 48
		s.inputs = append(s.inputs, input)
	}
	return s
}

func (s *contactScreen) Activate() tea.Cmd {
	return tea.Batch(s.focusField(s.focus), s.countQueued())
}

func (s *contactScreen) countQueued() tea.Cmd {
	submitter := s.submitter
	return func() tea.Msg {
		n, err := submitter.Queued()
		if err != nil {
			slog.Warn("Failed to count outbox", "error", err)
			return nil
		}
		return outboxCountMsg{queued: n}
	}
}

func (s *contactScreen) Capturing() bool {
	for _, in := range s.inputs {
		if in.Focused() {
			return true
		}
	}
	return false
}

func (s *contactScreen) Help() string {
	keys := s.chrome.keys
	if s.Capturing() {
		return helpLine(keys.NextField, keys.PrevField, keys.Submit, keys.Blur)
	}
	return helpLine(keys.Select) + " edit form"
}

func (s *contactScreen) form() contact.Form {
	var f contact.Form
	for i, field := range contact.Fields {
		f.Set(field, s.inputs[i].Value())
	}
	return f
}

func (s *contactScreen) focusField(i int) tea.Cmd {
	for j := range s.inputs {
		s.inputs[j].Blur()
	}
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

func (s *contactScreen) Update(msg tea.Msg) tea.Cmd {
	keys := s.chrome.keys
	switch msg := msg.(type) {
	case outboxCountMsg:
		s.queued = msg.queued
		return nil

	case contactResultMsg:
		s.sending = false
		var verrs contact.ValidationErrors
		switch {
		case errors.As(msg.err, &verrs):
			s.errs = verrs
			s.status = ""
		case msg.err != nil:
			s.failed = true
			s.status = "Failed to send your message. Please try again later."
		default:
			s.errs = nil
			s.failed = false
			s.status = "Thank you! Your message has been sent."
			s.queued = max(s.queued, msg.queued)
			for i := range s.inputs {
				s.inputs[i].Reset()
			}
			return s.focusField(0)
		}
		return nil

	case tea.KeyMsg:
		if !s.Capturing() {
			if key.Matches(msg, keys.Select) {
				return s.focusField(s.focus)
			}
			return nil
		}
		switch {
		case key.Matches(msg, keys.Blur):
			s.inputs[s.focus].Blur()
			return nil
		case key.Matches(msg, keys.Submit):
			return s.submit()
		case key.Matches(msg, keys.NextField):
			return s.focusField(s.focus + 1)
		case key.Matches(msg, keys.PrevField):
			return s.focusField(s.focus - 1)
		case key.Matches(msg, keys.Select):
			if s.focus == len(s.inputs)-1 {
				return s.submit()
			}
			return s.focusField(s.focus + 1)
		}
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return cmd
	}
	return nil
}

// submit validates in place; only a valid form leaves the screen
func (s *contactScreen) submit() tea.Cmd {
	form := s.form()
	if errs := form.Validate(); errs != nil {
		s.errs = errs
		s.status = ""
		return nil
	}
	s.errs = nil
	s.sending = true
	submitter := s.submitter
	return func() tea.Msg {
		id, err := submitter.Submit(form)
		if err != nil {
			return contactResultMsg{err: err}
		}
		queued, err := submitter.Queued()
		if err != nil {
			slog.Warn("Failed to count outbox", "error", err)
		}
		return contactResultMsg{id: id, queued: queued}
	}
}

func (s *contactScreen) View(width, height int) string {
	theme := s.chrome.theme

	var b strings.Builder
	b.WriteString(theme.title().Render("Contact us"))
	b.WriteString("\n")
	for i, f := range contact.Fields {
		label := cell(contactLabels[f], 9)
		if i == s.focus && s.inputs[i].Focused() {
			b.WriteString(theme.accent().Render(label))
		} else {
			b.WriteString(theme.faint().Render(label))
		}
		b.WriteString(s.inputs[i].View())
		if msg, ok := s.errs[f]; ok {
			b.WriteString("  " + theme.errorText().Render(msg))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case s.sending:
		b.WriteString(s.chrome.spinner.View() + " " + theme.faint().Render("Sending..."))
	case s.failed:
		b.WriteString(theme.errorText().Render(s.status))
	case s.status != "":
		b.WriteString(theme.success().Render(s.status))
	}
	if s.queued > 0 {
		b.WriteString("\n")
		b.WriteString(theme.faint().Render(fmt.Sprintf("Outbox: %s queued", humanize.Comma(int64(s.queued)))))
	}
	return b.String()
}
