// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter reports infrastructure failures to Sentry. Label constraint
// and voting errors are expected user outcomes and are never sent.
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry with privacy protection
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() || !isReportable(ee.Category) {
		return
	}

	message := scrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Err.Error()))
	title := errorTitle(ee)
	level := errorLevel(ee.Category, ee.Priority)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_title", title)
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", string(ee.Category))
		scope.SetTag("error_type", fmt.Sprintf("%T", ee.Err))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}

		for key, value := range ee.GetContext() {
			if s, ok := value.(string); ok {
				value = scrubMessage(s)
			}
			scope.SetContext(key, map[string]any{"value": value})
		}

		scope.SetLevel(level)
		scope.SetFingerprint([]string{title, ee.GetComponent(), string(ee.Category)})

		event := sentry.NewEvent()
		event.Message = message
		event.Level = level
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		sentry.CaptureEvent(event)
	})

	ee.MarkReported()
}

func isReportable(category ErrorCategory) bool {
	switch category {
	case CategoryDatabase, CategoryConfiguration, CategoryGeneric:
		return true
	default:
		return false
	}
}

// errorTitle builds a grouping title like "Voting Database Error Submit Ballot"
func errorTitle(ee *EnhancedError) string {
	var parts []string
	if c := ee.GetComponent(); c != "" && c != ComponentUnknown {
		parts = append(parts, titleCase(c))
	}
	switch ee.Category {
	case CategoryDatabase:
		parts = append(parts, "Database Error")
	case CategoryConfiguration:
		parts = append(parts, "Configuration Error")
	default:
		parts = append(parts, titleCase(string(ee.Category)))
	}
	if op, ok := ee.GetContext()["operation"].(string); ok && op != "" {
		for word := range strings.FieldsSeq(strings.ReplaceAll(op, "_", " ")) {
			parts = append(parts, titleCase(word))
		}
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// errorLevel maps a category to a Sentry level. An explicit priority
// overrides it: critical is fatal, high is always an error.
func errorLevel(category ErrorCategory, priority string) sentry.Level {
	switch priority {
	case PriorityCritical:
		return sentry.LevelFatal
	case PriorityHigh:
		return sentry.LevelError
	}
	switch category {
	case CategoryDatabase, CategoryConfiguration:
		return sentry.LevelError
	default:
		return sentry.LevelWarning
	}
}

var globalTelemetryReporter atomic.Pointer[TelemetryReporter]

// SetTelemetryReporter sets the global telemetry reporter. Passing nil disables reporting.
func SetTelemetryReporter(reporter TelemetryReporter) {
	if reporter == nil {
		globalTelemetryReporter.Store(nil)
		hasActiveReporting.Store(false)
		return
	}
	globalTelemetryReporter.Store(&reporter)
	hasActiveReporting.Store(reporter.IsEnabled())
}

func reportToTelemetry(ee *EnhancedError) {
	if p := globalTelemetryReporter.Load(); p != nil && (*p).IsEnabled() {
		(*p).ReportError(ee)
	}
}

var (
	dsnPattern      = regexp.MustCompile(`\b[^\s:/@]+:[^\s@]+@(tcp|unix)\(`)
	queryPattern    = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	passwordPattern = regexp.MustCompile(`(?i)password[=:]\S+`)
)

// scrubMessage removes credentials that database drivers tend to echo back
func scrubMessage(message string) string {
	scrubbed := dsnPattern.ReplaceAllString(message, "[CREDENTIALS_REDACTED]@$1(")
	scrubbed = queryPattern.ReplaceAllString(scrubbed, "$1?[REDACTED]")
	return passwordPattern.ReplaceAllString(scrubbed, "password=[REDACTED]")
}
