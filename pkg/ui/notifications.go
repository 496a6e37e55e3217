package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/beeep"

	"imgurr/pkg/config"
	"imgurr/pkg/logger"
)

// NotificationSender delivers desktop notifications and beeps
type NotificationSender interface {
	Notify(title, message string) error
	Beep() error
}

// beeepSender is the platform sender backed by beeep
type beeepSender struct{}

func (beeepSender) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func (beeepSender) Beep() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// Notifier tells the operator when a crawl ends
type Notifier struct {
	cfg    config.NotificationConfig
	sender NotificationSender
	logger logger.Logger
	out    io.Writer
	errOut io.Writer
}

// NewNotifier creates a Notifier using the platform's notification system
func NewNotifier(cfg config.NotificationConfig, log logger.Logger) *Notifier {
	return NewNotifierWithSender(cfg, beeepSender{}, log)
}

// NewNotifierWithSender creates a Notifier with a custom sender
func NewNotifierWithSender(cfg config.NotificationConfig, sender NotificationSender, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Notifier{cfg: cfg, sender: sender, logger: log, out: os.Stdout, errOut: os.Stderr}
}

// WithOutput redirects the printed summaries. Success lines go to out and
// failures to errOut; pass io.Discard for out to keep only failures.
func (n *Notifier) WithOutput(out, errOut io.Writer) *Notifier {
	n.out = out
	n.errOut = errOut
	return n
}

// SendSuccess reports a finished crawl
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	if n.cfg.Enabled && n.cfg.OnComplete {
		n.deliver(title, message)
	}
}

// SendError reports a failed crawl
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.errOut, "\n%s: %s\n", Red(title), Red(message))
	if n.cfg.Enabled && n.cfg.OnError {
		n.deliver(title, message)
	}
}

func (n *Notifier) deliver(title, message string) {
	if err := n.sender.Notify(title, message); err != nil {
		n.logger.WarnWithFields("Failed to send desktop notification", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if n.cfg.Beep {
		if err := n.sender.Beep(); err != nil {
			n.logger.DebugWithFields("Failed to beep", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
