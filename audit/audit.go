// Package audit writes one JSON event per successful admin write.
package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAddKeys    Action = "add_keys"
	ActionRemoveKeys Action = "remove_keys"
)

type ResourceType string

const (
	ResourceDefaultConfig   ResourceType = "vouch_default_config"
	ResourceProposer        ResourceType = "vouch_proposer"
	ResourceProposerPattern ResourceType = "vouch_proposer_pattern"
	ResourceMuxConfig       ResourceType = "commit_boost_mux"
)

// Actor identifies the admin token a write was made with.
type Actor struct {
	TokenName string `json:"token_name"`
}

// Changes holds the key fields of a write. Unset fields are omitted.
type Changes struct {
	Name         string   `json:"name,omitempty"`
	FeeRecipient string   `json:"fee_recipient,omitempty"`
	GasLimit     string   `json:"gas_limit,omitempty"`
	MinValue     string   `json:"min_value,omitempty"`
	Active       *bool    `json:"active,omitempty"`
	ResetRelays  *bool    `json:"reset_relays,omitempty"`
	Pattern      string   `json:"pattern,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	RelaysCount  *int     `json:"relays_count,omitempty"`
	KeyCount     *int     `json:"key_count,omitempty"`
}

type Event struct {
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Changes      *Changes
}

// Logger writes audit events. A nil *Logger discards them.
type Logger struct {
	log    *logrus.Logger
	closer io.Closer
}

// New returns a Logger writing to output, which is stdout, stderr or a file path opened for appending.
func New(output string) (*Logger, error) {
	var (
		w      io.Writer
		closer io.Closer
	)

	switch output {
	case "", OutputStdout:
		w = os.Stdout
	case OutputStderr:
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open audit output: %w", err)
		}
		w, closer = f, f
	}

	return &Logger{log: newJSONLogger(w), closer: closer}, nil
}

// NewWithWriter returns a Logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{log: newJSONLogger(w)}
}

func newJSONLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	return l
}

// Record writes ev with the request id and actor carried by ctx.
func (l *Logger) Record(ctx context.Context, ev Event) {
	if l == nil {
		return
	}

	fields := logrus.Fields{
		"type":          "audit",
		"request_id":    RequestID(ctx),
		"actor":         ActorFrom(ctx),
		"action":        ev.Action,
		"resource_type": ev.ResourceType,
		"resource_id":   ev.ResourceID,
		"success":       true,
	}
	if ev.Changes != nil {
		fields["changes"] = ev.Changes
	}

	l.log.WithFields(fields).Info(string(ev.Action) + " " + string(ev.ResourceType))
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}

	return l.closer.Close()
}
