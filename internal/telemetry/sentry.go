// Package telemetry wires Sentry error reporting for storage and
// configuration failures. Domain errors such as rejected labels or ballots
// are never sent.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/labelquorum/quorum/internal/buildinfo"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
)

// flushTimeout bounds how long Close waits for queued events.
const flushTimeout = 2 * time.Second

// Init initializes the Sentry SDK and installs the error reporter. It
// returns false without error when telemetry is disabled or no DSN is set.
func Init(settings *conf.TelemetrySettings, build *buildinfo.Context, log logger.Logger) (bool, error) {
	if !settings.Enabled || settings.SentryDSN == "" {
		errors.SetTelemetryReporter(nil)
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.SentryDSN,
		SampleRate: 1.0,
		Debug:      false,

		AttachStacktrace: false,
		Environment:      settings.Environment,
		ServerName:       "", // no hostname leakage
		Release:          build.Release(),

		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return false, fmt.Errorf("sentry initialization failed: %w", err)
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	if log != nil {
		log.Info("error telemetry enabled",
			logger.String("environment", settings.Environment),
			logger.String("release", build.Release()))
	}
	return true, nil
}

// Close detaches the reporter and flushes pending events.
func Close() {
	errors.SetTelemetryReporter(nil)
	sentry.Flush(flushTimeout)
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
