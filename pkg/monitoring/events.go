package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Workflow events counted by business_events_total
const (
	EventMemberRegistered     = "member_registered"
	EventLoginSucceeded       = "login_succeeded"
	EventProfileSubmitted     = "profile_submitted"
	EventProfileApproved      = "profile_approved"
	EventProfileRejected      = "profile_rejected"
	EventConnectionRequested  = "connection_requested"
	EventConnectionApproved   = "connection_approved"
	EventConnectionRejected   = "connection_rejected"
	EventVisibilityChecked    = "visibility_checked"
	EventNotificationAppended = "notification_appended"
	EventEmailPublished       = "email_published"
)

// RecordBusinessEvent counts one workflow event with a success or failure outcome
func RecordBusinessEvent(ctx context.Context, action string, success bool) {
	inst := active.Load()
	if inst == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	inst.businessEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("business.action", action),
		attribute.String("business.outcome", outcome),
	))
}

// RecordExternalCall tracks latency and errors for a call to target, e.g. "s3" or "redis"
func RecordExternalCall(ctx context.Context, target, operation string, duration time.Duration, err error) {
	inst := active.Load()
	if inst == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String("external.target", target),
		attribute.String("external.operation", operation),
		attribute.Bool("external.success", err == nil),
	)
	inst.externalCalls.Add(ctx, 1, opt)
	inst.externalLatency.Record(ctx, duration.Seconds(), opt)
	if err != nil {
		inst.externalErrors.Add(ctx, 1, opt)
	}
}
