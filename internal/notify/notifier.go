package notify

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/aridelmo/argus/internal/logger"
	"github.com/aridelmo/argus/internal/models"
)

// Notifier pushes security events to configured shoutrrr destinations
// (Discord, Slack, SMTP, generic webhooks, ...). Sends are best effort;
// failures are logged and never surfaced to the pipeline.
type Notifier struct {
	urls []string
	send func(url, message string) error
}

// New creates a Notifier for the given shoutrrr URLs. An empty list yields a
// no-op notifier.
func New(urls []string) *Notifier {
	return &Notifier{
		urls: urls,
		send: func(url, message string) error {
			return shoutrrr.Send(url, message)
		},
	}
}

// BlockDetected announces a blocked request.
func (n *Notifier) BlockDetected(rec models.AuditRecord) {
	stage := "pattern match"
	if rec.Stage2Checked {
		stage = "semantic analysis"
	}
	n.broadcast(fmt.Sprintf("Argus blocked %s %s (%s): %s", rec.Method, rec.Path, stage, rec.Reason))
}

// RuleLearned announces a rule promoted into the fast path.
func (n *Notifier) RuleLearned(pattern string) {
	n.broadcast(fmt.Sprintf("Argus learned a new blocking rule: %s", pattern))
}

func (n *Notifier) broadcast(message string) {
	for _, url := range n.urls {
		if err := n.send(url, message); err != nil {
			logger.WithComponent("notify").WithError(err).
				Warn("failed to deliver notification")
		}
	}
}
