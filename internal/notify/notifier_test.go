package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aridelmo/argus/internal/models"
)

func TestNotifier_BroadcastsToAllURLs(t *testing.T) {
	var sent []string
	n := New([]string{"slack://a", "discord://b"})
	n.send = func(url, message string) error {
		sent = append(sent, url+"|"+message)
		return nil
	}

	n.RuleLearned(`(?i)xss_pattern`)

	assert.Len(t, sent, 2)
	assert.Contains(t, sent[0], "slack://a")
	assert.Contains(t, sent[0], "(?i)xss_pattern")
}

func TestNotifier_BlockDetectedMessage(t *testing.T) {
	var got string
	n := New([]string{"slack://a"})
	n.send = func(url, message string) error {
		got = message
		return nil
	}

	n.BlockDetected(models.AuditRecord{
		Method:        "POST",
		Path:          "/login",
		Stage2Checked: true,
		Reason:        "xss",
	})

	assert.Contains(t, got, "POST /login")
	assert.Contains(t, got, "semantic analysis")
	assert.Contains(t, got, "xss")
}

func TestNotifier_NoURLsIsNoop(t *testing.T) {
	n := New(nil)
	// Must not panic or send anywhere.
	n.BlockDetected(models.AuditRecord{})
	n.RuleLearned("x")
	assert.Empty(t, n.urls)
}
