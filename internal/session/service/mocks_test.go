package service

import (
	"context"
	"sync"

	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/identity"
	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock

	mu    sync.Mutex
	calls []string
}

func (m *mockBackend) Me(ctx context.Context, token, roleType string) ([]backend.Record, error) {
	m.mu.Lock()
	m.calls = append(m.calls, roleType)
	m.mu.Unlock()

	args := m.Called(ctx, token, roleType)
	records, _ := args.Get(0).([]backend.Record)
	return records, args.Error(1)
}

func (m *mockBackend) Update(ctx context.Context, token, resource, code string, payload any) (backend.Result, error) {
	args := m.Called(ctx, token, resource, code, payload)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *mockBackend) SignupAdmin(ctx context.Context, token string, payload any) (backend.Result, error) {
	args := m.Called(ctx, token, payload)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *mockBackend) probed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (identity.Token, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Token), args.Error(1)
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password string) (identity.Token, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Token), args.Error(1)
}

func (m *mockIdentity) Delete(ctx context.Context, idToken string) error {
	return m.Called(ctx, idToken).Error(0)
}

func (m *mockIdentity) Refresh(ctx context.Context, refreshToken string) (identity.Token, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(identity.Token), args.Error(1)
}
