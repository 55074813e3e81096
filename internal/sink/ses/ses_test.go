package ses

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/mfischer/mailsink/internal/message"
)

// mockSESClient implements SendEmailAPI for testing.
type mockSESClient struct {
	sendFn    func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	callCount int
	lastInput *sesv2.SendEmailInput
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.sendFn != nil {
		return m.sendFn(ctx, params, optFns...)
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func TestName(t *testing.T) {
	t.Parallel()
	s := NewWithClient("sender@example.com", &mockSESClient{})
	if got := s.Name(); got != "ses" {
		t.Errorf("Name(): got %q, want %q", got, "ses")
	}
}

func TestDeliver_RawMessage(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	s := NewWithClient("sender@example.com", mock)

	raw := "Subject: Relay Test\r\n\r\nHello\r\n"
	msg := &message.Message{
		Sender:    "alice@example.com",
		Recipient: "bob@example.com",
		Raw:       raw,
	}

	if err := s.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount != 1 {
		t.Errorf("call count: got %d, want 1", mock.callCount)
	}

	input := mock.lastInput
	if input.Content.Raw == nil {
		t.Fatal("expected raw email content, got nil")
	}
	if got := string(input.Content.Raw.Data); got != raw {
		t.Errorf("raw data: got %q, want %q", got, raw)
	}
	if got := *input.FromEmailAddress; got != "sender@example.com" {
		t.Errorf("FromEmailAddress: got %q, want %q", got, "sender@example.com")
	}
	if input.Destination == nil || len(input.Destination.ToAddresses) != 1 {
		t.Fatal("expected one destination address")
	}
	if got := input.Destination.ToAddresses[0]; got != "bob@example.com" {
		t.Errorf("ToAddresses[0]: got %q, want %q", got, "bob@example.com")
	}
}

func TestDeliver_NoRecipient(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	s := NewWithClient("sender@example.com", mock)

	msg := &message.Message{Raw: "Subject: x\r\n\r\nbody\r\n"}

	if err := s.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastInput.Destination != nil {
		t.Errorf("Destination: got %+v, want nil", mock.lastInput.Destination)
	}
}

func TestDeliver_RetryOnError(t *testing.T) {
	t.Parallel()

	callCount := 0
	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			callCount++
			if callCount <= 2 {
				return nil, errors.New("transient error")
			}
			return &sesv2.SendEmailOutput{MessageId: aws.String("ok")}, nil
		},
	}
	s := NewWithClient("sender@example.com", mock)

	msg := &message.Message{Recipient: "to@example.com", Raw: "Subject: retry\r\n\r\nHello\r\n"}

	if err := s.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if callCount != 3 {
		t.Errorf("call count: got %d, want 3", callCount)
	}
}

func TestDeliver_AllRetriesExhausted(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("persistent error")
		},
	}
	s := NewWithClient("sender@example.com", mock)

	msg := &message.Message{Recipient: "to@example.com", Raw: "Subject: fail\r\n\r\nHello\r\n"}

	err := s.Deliver(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error after all retries exhausted")
	}
	if !strings.Contains(err.Error(), "after 3 retries") {
		t.Errorf("error message: got %q, want to contain 'after 3 retries'", err.Error())
	}
	// 1 initial + 3 retries = 4 total
	if mock.callCount != 4 {
		t.Errorf("call count: got %d, want 4", mock.callCount)
	}
}

func TestDeliver_ContextCancelled(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("transient error")
		},
	}
	s := NewWithClient("sender@example.com", mock)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	msg := &message.Message{Recipient: "to@example.com", Raw: "Subject: ctx\r\n\r\nHello\r\n"}

	err := s.Deliver(ctx, msg)
	if err == nil {
		t.Fatal("expected error when context is cancelled during retry wait")
	}
	if !strings.Contains(err.Error(), "context") {
		t.Errorf("error message: got %q, want to mention context", err.Error())
	}
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d): got %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
