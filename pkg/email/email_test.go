package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/queue"
)

// MockSender is a testify mock of the Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func validMessage() email.Message {
	return email.Message{
		To:       "user@example.com",
		Subject:  "Leave request approved",
		BodyHTML: "<p>Your leave request was approved.</p>",
		Tag:      "leave.approved",
	}
}

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*email.Message)
		wantErr bool
	}{
		{name: "valid", mutate: func(m *email.Message) {}},
		{name: "valid text only", mutate: func(m *email.Message) {
			m.BodyHTML = ""
			m.BodyText = "Your leave request was approved."
		}},
		{name: "missing recipient", mutate: func(m *email.Message) { m.To = "" }, wantErr: true},
		{name: "whitespace recipient", mutate: func(m *email.Message) { m.To = "   " }, wantErr: true},
		{name: "malformed recipient", mutate: func(m *email.Message) { m.To = "not-an-address" }, wantErr: true},
		{name: "missing domain", mutate: func(m *email.Message) { m.To = "user@" }, wantErr: true},
		{name: "missing subject", mutate: func(m *email.Message) { m.Subject = "" }, wantErr: true},
		{name: "missing body", mutate: func(m *email.Message) { m.BodyHTML = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := validMessage()
			tt.mutate(&msg)

			err := msg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, email.ErrInvalidMessage)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewPostmarkClient_ConfigValidation(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		sender, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	tests := []struct {
		name   string
		mutate func(*email.Config)
	}{
		{name: "missing server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }},
		{name: "missing account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }},
		{name: "missing sender email", mutate: func(c *email.Config) { c.SenderEmail = "" }},
		{name: "invalid sender email", mutate: func(c *email.Config) { c.SenderEmail = "nope" }},
		{name: "missing support email", mutate: func(c *email.Config) { c.SupportEmail = "" }},
		{name: "invalid support email", mutate: func(c *email.Config) { c.SupportEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			_, err := email.NewPostmarkClient(cfg)
			require.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}

	t.Run("must panics on invalid config", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			email.MustNewPostmarkClient(email.Config{})
		})
	})
}

func TestDevSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		require.NoError(t, sender.Send(context.Background(), validMessage()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = filepath.Join(dir, e.Name())
			case ".json":
				jsonFile = filepath.Join(dir, e.Name())
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)

		html, err := os.ReadFile(htmlFile)
		require.NoError(t, err)
		assert.Contains(t, string(html), "approved")

		raw, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		var meta map[string]any
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "user@example.com", meta["to"])
		assert.Equal(t, "leave.approved", meta["tag"])

		// Tag names the files.
		assert.True(t, strings.HasSuffix(htmlFile, "leave.approved.html"))
	})

	t.Run("rejects invalid message", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender(t.TempDir())
		err := sender.Send(context.Background(), email.Message{})
		require.ErrorIs(t, err, email.ErrInvalidMessage)
	})
}

func TestQueueSender(t *testing.T) {
	t.Parallel()

	t.Run("nil sender", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewQueueSender(nil)
		require.Error(t, err)
	})

	t.Run("channel name", func(t *testing.T) {
		t.Parallel()

		qs, err := email.NewQueueSender(new(MockSender))
		require.NoError(t, err)
		assert.Equal(t, queue.ChannelEmail, qs.Channel())
	})

	t.Run("decodes payload and delivers", func(t *testing.T) {
		t.Parallel()

		msg := validMessage()
		sender := new(MockSender)
		sender.On("Send", mock.Anything, msg).Return(nil)

		qs, err := email.NewQueueSender(sender)
		require.NoError(t, err)

		payload, err := json.Marshal(msg)
		require.NoError(t, err)
		require.NoError(t, qs.Send(context.Background(), payload))
		sender.AssertExpectations(t)
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		t.Parallel()

		qs, err := email.NewQueueSender(new(MockSender))
		require.NoError(t, err)

		err = qs.Send(context.Background(), json.RawMessage(`{broken`))
		require.ErrorIs(t, err, queue.ErrPermanent)
	})

	t.Run("permanent provider failure is permanent", func(t *testing.T) {
		t.Parallel()

		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: inactive recipient", email.ErrPermanentFailure))

		qs, err := email.NewQueueSender(sender)
		require.NoError(t, err)

		payload, err := json.Marshal(validMessage())
		require.NoError(t, err)
		err = qs.Send(context.Background(), payload)
		require.ErrorIs(t, err, queue.ErrPermanent)
	})

	t.Run("transient failure passes through", func(t *testing.T) {
		t.Parallel()

		transient := errors.New("connection reset")
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.Anything).Return(transient)

		qs, err := email.NewQueueSender(sender)
		require.NoError(t, err)

		payload, err := json.Marshal(validMessage())
		require.NoError(t, err)
		err = qs.Send(context.Background(), payload)
		require.ErrorIs(t, err, transient)
		assert.NotErrorIs(t, err, queue.ErrPermanent)
	})
}
