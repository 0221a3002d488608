package chat

import (
	"fmt"
	"strings"

	"github.com/bnema/docbrain-cli/internal/application"
	"github.com/bnema/docbrain-cli/internal/domain"
)

const (
	userLabel      = "you"
	assistantLabel = "docbrain"
)

// renderTranscript lays out the ordered message collection for the viewport.
func renderTranscript(snapshot application.ConversationSnapshot, st styles, width int) string {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for i, message := range snapshot.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderMessage(message, st, width))
	}

	if snapshot.Waiting {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(st.assistant.Render(assistantLabel))
		b.WriteString("\n")
		b.WriteString(st.waiting.Render("thinking..."))
	}

	return b.String()
}

func renderMessage(message domain.Message, st styles, width int) string {
	var b strings.Builder

	label := st.user.Render(userLabel)
	if message.Author == domain.AuthorAssistant {
		label = st.assistant.Render(assistantLabel)
	}
	b.WriteString(label)
	b.WriteString(st.header.Render("  " + message.CreatedAt.Local().Format("15:04")))
	b.WriteString("\n")

	switch {
	case message.Status == domain.MessageFailed:
		body := message.Content
		if body == "" {
			body = "message failed"
		}
		b.WriteString(st.failed.Width(width).Render(body))
	case message.Status.InFlight() && message.Author == domain.AuthorAssistant && message.Content == "":
		b.WriteString(st.waiting.Render("thinking..."))
	default:
		b.WriteString(st.body.Width(width).Render(message.Content))
	}

	if len(message.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(st.source.Render(sourceLine(message.Sources)))
	}

	return b.String()
}

func sourceLine(sources []domain.Source) string {
	titles := make([]string, 0, len(sources))
	seen := map[string]struct{}{}
	for _, source := range sources {
		title := source.Title
		if title == "" {
			title = source.DocumentID
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}

	return fmt.Sprintf("sources: %s", strings.Join(titles, ", "))
}
