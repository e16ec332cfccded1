package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var m Message
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		got = append(got, m)
		if m.MsgType == "markdown" && m.Markdown.Content == "fail" {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	s := NewSender(srv.URL, nil)
	require.True(t, s.Enabled)
	require.NoError(t, s.SendText(context.Background(), "done", "@all"))
	require.NoError(t, s.SendMarkdown(context.Background(), "**done**"))
	assert.Error(t, s.SendMarkdown(context.Background(), "fail"))

	require.Len(t, got, 3)
	assert.Equal(t, "text", got[0].MsgType)
	assert.Equal(t, "done", got[0].Text.Content)
	assert.Equal(t, []string{"@all"}, got[0].Text.MentionedList)
	assert.Nil(t, got[0].Markdown)
	assert.Equal(t, "**done**", got[1].Markdown.Content)
}

func TestDisabledSender(t *testing.T) {
	s := NewSender("", nil)
	assert.False(t, s.Enabled)
	assert.NoError(t, s.SendText(context.Background(), "ignored"))
	assert.NoError(t, s.SendMarkdown(context.Background(), "ignored"))
}
