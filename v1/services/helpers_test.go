package services

import (
	"context"
	"sync"
	"time"

	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Ensure the doubles implement their interfaces
var (
	_ NotificationSink = (*recordingSink)(nil)
	_ EmailEnqueuer    = (*recordingEnqueuer)(nil)
	_ EmailPublisher   = (*mockPublisher)(nil)
	_ BlobStore        = (*mockBlobStore)(nil)
	_ LoginLimiter     = (*failingLimiter)(nil)
)

type notificationCall struct {
	memberID string
	message  string
}

// recordingSink captures appended notifications
type recordingSink struct {
	mu    sync.Mutex
	calls []notificationCall
}

func (s *recordingSink) Append(_ context.Context, memberID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, notificationCall{memberID: memberID, message: message})
}

func (s *recordingSink) forMember(memberID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []string
	for _, c := range s.calls {
		if c.memberID == memberID {
			messages = append(messages, c.message)
		}
	}
	return messages
}

type emailCall struct {
	jobType   models.EmailJobType
	recipient string
	subject   string
}

// recordingEnqueuer captures enqueued emails
type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []emailCall
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, jobType models.EmailJobType, recipient, subject, _ string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, emailCall{jobType: jobType, recipient: recipient, subject: subject})
}

// mockPublisher is a test implementation of EmailPublisher
type mockPublisher struct {
	publishFunc func(msg models.EmailMessage) error
	published   []models.EmailMessage
}

func (m *mockPublisher) Publish(_ context.Context, msg models.EmailMessage) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(msg); err != nil {
			return err
		}
	}
	m.published = append(m.published, msg)
	return nil
}

// mockBlobStore is a test implementation of BlobStore
type mockBlobStore struct {
	presignUploadFunc func(key, contentType string) (string, time.Time, error)
	presignReadFunc   func(key string) (string, error)
}

func (m *mockBlobStore) PresignUpload(_ context.Context, key, contentType string) (string, time.Time, error) {
	if m.presignUploadFunc != nil {
		return m.presignUploadFunc(key, contentType)
	}
	return "https://uploads.example.test/" + key, testNow.Add(5 * time.Minute), nil
}

func (m *mockBlobStore) PresignRead(_ context.Context, key string) (string, error) {
	if m.presignReadFunc != nil {
		return m.presignReadFunc(key)
	}
	return "https://files.example.test/" + key, nil
}

// failingLimiter simulates an unreachable limiter backend
type failingLimiter struct {
	err error
}

func (l *failingLimiter) Allow(context.Context, string) (bool, error)  { return false, l.err }
func (l *failingLimiter) RecordFailure(context.Context, string) error { return l.err }
func (l *failingLimiter) Reset(context.Context, string) error         { return l.err }

func stringPtr(s string) *string {
	return &s
}
