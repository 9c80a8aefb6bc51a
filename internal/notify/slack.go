package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/modq-io/modq/pkg/protocol"
)

// SlackNotifier posts status changes to a Slack channel via the Web API.
type SlackNotifier struct {
	api     *slack.Client
	channel string
	logger  *slog.Logger
}

// NewSlack creates a Slack notifier and verifies the token.
func NewSlack(token, channel string, logger *slog.Logger) (*SlackNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api := slack.New(token)
	authResp, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack: auth test: %w", err)
	}
	logger.Info("slack notifier authorized", "user", authResp.User, "team", authResp.Team)

	return &SlackNotifier{api: api, channel: channel, logger: logger}, nil
}

func (n *SlackNotifier) Name() string { return "slack" }

func (n *SlackNotifier) TicketStatusChanged(ctx context.Context, t *protocol.Ticket) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(statusLine(t), false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
