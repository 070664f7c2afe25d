// Package notify provides Notifier implementations: a zap-backed sink
// for server logs and helpers for composing sinks. The engine never
// depends on any of them succeeding.
package notify

import (
	"go.uber.org/zap"

	"github.com/user/corporate-warfare/internal/interfaces"
)

// ZapNotifier routes notifications into a structured logger
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier creates a logger-backed notifier
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{logger: logger}
}

// Notify logs the message at a level matching its classification
func (n *ZapNotifier) Notify(level, message string) {
	switch level {
	case interfaces.LevelError:
		n.logger.Error(message, zap.String("channel", "notification"))
	case interfaces.LevelWarning:
		n.logger.Warn(message, zap.String("channel", "notification"))
	default:
		n.logger.Info(message,
			zap.String("channel", "notification"),
			zap.String("level", level))
	}
}

// Nop discards every notification; used in tests and headless runs
type Nop struct{}

// Notify does nothing
func (Nop) Notify(level, message string) {}

// Multi fans a notification out to several sinks
type Multi []interfaces.Notifier

// Notify forwards to every sink
func (m Multi) Notify(level, message string) {
	for _, n := range m {
		n.Notify(level, message)
	}
}
