package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectAnalysisCompleted is published after every initial analysis.
	SubjectAnalysisCompleted = "clippy.analysis.completed"
	// SubjectChatCompleted is published after every follow-up turn.
	SubjectChatCompleted = "clippy.chat.completed"
)

// Completed describes one finished model round trip. It carries sizes and
// timing only, never the submitted text or the reply.
type Completed struct {
	SessionID    string    `json:"session_id,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Provider     string    `json:"provider"`
	Followup     bool      `json:"followup"`
	Failed       bool      `json:"failed"`
	DurationMS   int64     `json:"duration_ms"`
	InputLength  int       `json:"input_length"`
	OutputLength int       `json:"output_length"`
	Timestamp    time.Time `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("clippyai"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	logger.Info("nats connected", "url", url)
	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
