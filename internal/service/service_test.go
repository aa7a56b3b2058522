package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/flows"
	"mediguard/internal/genai"
	"mediguard/internal/notify"
	"mediguard/internal/repository"
	"mediguard/policy"
)

const testImage = "data:image/png;base64,aW1hZ2VkYXRh"

type testEnv struct {
	svc      *Service
	store    repository.Store
	mock     *genai.MockClient
	notifier *notify.Notifier
}

func newTestService(t *testing.T, store repository.Store) *testEnv {
	t.Helper()

	if store == nil {
		s, err := repository.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		store = s
	}

	mock := genai.NewMockClient()
	invoker := genai.NewInvoker(mock, zap.NewNop(), nil)

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	notifier := notify.New(nil, zap.NewNop())
	cfg := config.Load()

	svc := New(
		store,
		flows.NewSafetyScorer(invoker),
		flows.NewDetailExtractor(invoker),
		flows.NewGuidanceAssistant(invoker),
		engine,
		notifier,
		nil,
		cfg,
		zap.NewNop(),
	)
	return &testEnv{svc: svc, store: store, mock: mock, notifier: notifier}
}

// failingStore wraps a real store and fails selected writes.
type failingStore struct {
	repository.Store
	failPrescriptions bool
	failChat          bool
}

func (f *failingStore) CreatePrescription(ctx context.Context, p *domain.Prescription) error {
	if f.failPrescriptions {
		return errors.New("disk full")
	}
	return f.Store.CreatePrescription(ctx, p)
}

func (f *failingStore) CreateChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if f.failChat {
		return errors.New("disk full")
	}
	return f.Store.CreateChatMessage(ctx, msg)
}
