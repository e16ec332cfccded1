// Package notify posts run reports to a chat webhook that accepts
// {"msgtype": "text"|"markdown", ...} JSON bodies.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Message is the webhook request body.
type Message struct {
	MsgType  string           `json:"msgtype"`
	Text     *TextContent     `json:"text,omitempty"`
	Markdown *MarkdownContent `json:"markdown,omitempty"`
}

type TextContent struct {
	Content       string   `json:"content"`
	MentionedList []string `json:"mentioned_list,omitempty"`
}

type MarkdownContent struct {
	Content string `json:"content"`
}

// Sender posts messages to one webhook URL. A sender with an empty URL is
// disabled and every send is a no-op.
type Sender struct {
	URL     string
	Enabled bool
	Client  *http.Client
	Logger  *slog.Logger
}

func NewSender(url string, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sender{
		URL:     url,
		Enabled: url != "",
		Client:  &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

// SendText posts a plain text message.
func (s *Sender) SendText(ctx context.Context, content string, mentioned ...string) error {
	if !s.Enabled {
		return nil
	}
	return s.send(ctx, Message{
		MsgType: "text",
		Text:    &TextContent{Content: content, MentionedList: mentioned},
	})
}

// SendMarkdown posts a markdown message.
func (s *Sender) SendMarkdown(ctx context.Context, content string) error {
	if !s.Enabled {
		return nil
	}
	return s.send(ctx, Message{
		MsgType:  "markdown",
		Markdown: &MarkdownContent{Content: content},
	})
}

func (s *Sender) send(ctx context.Context, message Message) error {
	var body, err = json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	s.Logger.Info("notification sent", "msgtype", message.MsgType)
	return nil
}
