package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"github.com/smallbiznis/orderdesk/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newResolver(b *mockBackend) *Resolver {
	return NewResolver(b, metrics.NewSessionMetrics(prometheus.NewRegistry()), zap.NewNop())
}

func distributorRecord() []backend.Record {
	return []backend.Record{{"username": "acme", "role": "distributor", "state": "Tamil Nadu"}}
}

func TestResolveHintHitMakesOneCall(t *testing.T) {
	b := &mockBackend{}
	b.On("Me", mock.Anything, "tok", "distributor").Return(distributorRecord(), nil).Once()

	res := newResolver(b).Resolve(context.Background(), "tok", domain.TypeDistributor)

	assert.True(t, res.Found())
	assert.True(t, res.Hinted)
	assert.Equal(t, domain.RoleDistributor, res.Role)
	assert.Equal(t, domain.TypeDistributor, res.RoleType)
	assert.Equal(t, 1, res.Calls)
	assert.Equal(t, []string{"distributor"}, b.probed())
	b.AssertExpectations(t)
}

func TestResolveWithoutHintProbesInOrder(t *testing.T) {
	b := &mockBackend{}
	b.On("Me", mock.Anything, "tok", "admin").Return(nil, errors.New("403")).Once()
	b.On("Me", mock.Anything, "tok", "distributor").Return([]backend.Record{}, nil).Once()
	b.On("Me", mock.Anything, "tok", "corporate").Return([]backend.Record{{"username": "corp", "role": "direct"}}, nil).Once()

	res := newResolver(b).Resolve(context.Background(), "tok", "")

	assert.Equal(t, []string{"admin", "distributor", "corporate"}, b.probed())
	assert.Equal(t, 3, res.Calls)
	assert.Equal(t, domain.TypeCorporate, res.RoleType)
	assert.Equal(t, domain.RoleDirect, res.Role)
	assert.False(t, res.Hinted)
}

func TestResolveFailedHintStillProbesAll(t *testing.T) {
	b := &mockBackend{}
	b.On("Me", mock.Anything, "tok", "corporate").Return(nil, errors.New("boom")).Twice()
	b.On("Me", mock.Anything, "tok", "admin").Return(nil, nil).Once()
	b.On("Me", mock.Anything, "tok", "distributor").Return(distributorRecord(), nil).Once()

	res := newResolver(b).Resolve(context.Background(), "tok", domain.TypeCorporate)

	assert.Equal(t, []string{"corporate", "admin", "distributor"}, b.probed())
	assert.Equal(t, domain.RoleDistributor, res.Role)
	assert.False(t, res.Hinted)
}

func TestResolveExhausted(t *testing.T) {
	b := &mockBackend{}
	b.On("Me", mock.Anything, "tok", mock.Anything).Return([]backend.Record{{}}, nil)

	res := newResolver(b).Resolve(context.Background(), "tok", "bogus")

	assert.Equal(t, domain.RoleUnknown, res.Role)
	assert.Nil(t, res.Profile)
	assert.False(t, res.Found())
	assert.Equal(t, []string{"admin", "distributor", "corporate"}, b.probed())
}

func TestResolveMissingRoleFieldUsesTypeDefault(t *testing.T) {
	b := &mockBackend{}
	b.On("Me", mock.Anything, "tok", "corporate").Return([]backend.Record{{"customer_name": "Zed"}}, nil)

	res := newResolver(b).ResolveScoped(context.Background(), "tok", domain.TypeCorporate)
	assert.Equal(t, domain.RoleDirect, res.Role)
	assert.Equal(t, 1, res.Calls)
}

func TestResolveIgnoresNoticeBodies(t *testing.T) {
	var (
		mu     sync.Mutex
		probed []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		probed = append(probed, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/me-admin":
			_, _ = w.Write([]byte(`{"message":"No admin profile for this user"}`))
		case "/me-distributor":
			_, _ = w.Write([]byte(`{"data":[{"USERNAME":"acme","ROLE":"distributor"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	r := NewResolver(client, metrics.NewSessionMetrics(prometheus.NewRegistry()), zap.NewNop())

	res := r.Resolve(context.Background(), "tok", "")

	assert.Equal(t, domain.RoleDistributor, res.Role)
	assert.Equal(t, domain.TypeDistributor, res.RoleType)
	assert.Equal(t, "acme", backend.Record(res.Profile).String("username"))
	assert.Equal(t, 2, res.Calls)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/me-admin", "/me-distributor"}, probed)
}
