package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/smallbiznis/orderdesk/internal/authorization"
	"github.com/smallbiznis/orderdesk/internal/backend"
	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/config"
	masterdatadomain "github.com/smallbiznis/orderdesk/internal/masterdata/domain"
	"github.com/smallbiznis/orderdesk/internal/observability"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/session/cookie"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSessions struct {
	current   sessiondomain.Session
	loginReq  sessiondomain.LoginRequest
	loginResp sessiondomain.LoginResult
	loggedOut bool
	provision sessiondomain.ProvisionRequest
}

func (f *fakeSessions) Current(ctx context.Context, clientID string) (sessiondomain.Session, error) {
	s := f.current
	s.ClientID = clientID
	return s, nil
}

func (f *fakeSessions) Token(ctx context.Context, clientID string) (string, error) {
	return "token", nil
}

func (f *fakeSessions) Login(ctx context.Context, clientID string, req sessiondomain.LoginRequest) (sessiondomain.LoginResult, error) {
	if _, ok := sessiondomain.ParseRoleType(req.RoleType); !ok {
		return sessiondomain.LoginResult{}, sessiondomain.ErrInvalidRoleType
	}
	f.loginReq = req
	return f.loginResp, nil
}

func (f *fakeSessions) Restore(ctx context.Context, clientID string, req sessiondomain.RestoreRequest) (sessiondomain.Session, error) {
	return f.current, nil
}

func (f *fakeSessions) Logout(ctx context.Context, clientID string) error {
	f.loggedOut = true
	f.current = sessiondomain.Session{State: sessiondomain.StateAnonymous}
	return nil
}

func (f *fakeSessions) SignupAdmin(ctx context.Context, req sessiondomain.SignupAdminRequest) (sessiondomain.SignupResult, error) {
	return sessiondomain.SignupResult{Success: true, Role: "admin"}, nil
}

func (f *fakeSessions) ProvisionAccount(ctx context.Context, req sessiondomain.ProvisionRequest) (sessiondomain.SignupResult, error) {
	f.provision = req
	return sessiondomain.SignupResult{Success: true, Role: req.Kind, AffectedRows: 1}, nil
}

type fakeCredentials struct {
	history map[string][]csdomain.Credential
}

func (f *fakeCredentials) History(ctx context.Context, clientID, role string) ([]csdomain.Credential, error) {
	if strings.TrimSpace(role) == "" {
		return nil, csdomain.ErrInvalidRole
	}
	return f.history[role], nil
}

func (f *fakeCredentials) Save(ctx context.Context, clientID, role, email, username string) ([]csdomain.Credential, error) {
	f.history[role] = append([]csdomain.Credential{{Email: email, Username: username}}, f.history[role]...)
	return f.history[role], nil
}

func (f *fakeCredentials) Remove(ctx context.Context, clientID, role, email string) ([]csdomain.Credential, error) {
	out := []csdomain.Credential{}
	for _, c := range f.history[role] {
		if c.Email != email {
			out = append(out, c)
		}
	}
	f.history[role] = out
	return out, nil
}

func (f *fakeCredentials) Clear(ctx context.Context, clientID, role string) error {
	delete(f.history, role)
	return nil
}

type fakeMasterdata struct {
	created map[string]any
}

func (f *fakeMasterdata) List(ctx context.Context, clientID string, kind masterdatadomain.Kind) ([]masterdatadomain.Entry, error) {
	return []masterdatadomain.Entry{
		masterdatadomain.NewEntry(kind, backend.Record{"customer_code": "C001", "customer_name": "Acme", "state": "Kerala"}),
	}, nil
}

func (f *fakeMasterdata) Get(ctx context.Context, clientID string, kind masterdatadomain.Kind, code string) (masterdatadomain.Entry, error) {
	return masterdatadomain.Entry{}, masterdatadomain.ErrNotFound
}

func (f *fakeMasterdata) Create(ctx context.Context, clientID string, kind masterdatadomain.Kind, fields map[string]any) (backend.Result, error) {
	if err := masterdatadomain.Validate(kind, fields); err != nil {
		return backend.Result{}, err
	}
	f.created = fields
	return backend.Result{AffectedRows: 1}, nil
}

func (f *fakeMasterdata) Update(ctx context.Context, clientID string, kind masterdatadomain.Kind, code string, fields map[string]any) (backend.Result, error) {
	return backend.Result{}, backend.ErrUpstreamUnavailable
}

type fakeOrders struct{}

func (fakeOrders) NewDraft(ctx context.Context, clientID string) (orderdomain.Draft, error) {
	return orderdomain.Draft{
		Order:        orderdomain.Order{Header: orderdomain.Header{OrderNumber: "SO-1", Status: orderdomain.StatusPending}},
		NumberIssued: true,
	}, nil
}

func (fakeOrders) Compute(ctx context.Context, clientID string, order orderdomain.Order) (orderdomain.Order, error) {
	return order, nil
}

func (fakeOrders) Submit(ctx context.Context, clientID string, order orderdomain.Order) (orderdomain.SubmitResult, error) {
	if len(order.Lines) == 0 {
		return orderdomain.SubmitResult{}, orderdomain.NoItems()
	}
	return orderdomain.SubmitResult{Success: true, OrderNumber: order.OrderNumber}, nil
}

func (fakeOrders) Get(ctx context.Context, clientID, orderNumber string) (orderdomain.Order, error) {
	return orderdomain.Order{}, orderdomain.ErrNotFound
}

func (fakeOrders) Voucher(ctx context.Context, clientID, orderNumber string) (io.Reader, error) {
	return strings.NewReader("%PDF-1.3 fake"), nil
}

type testServer struct {
	engine   *gin.Engine
	sessions *fakeSessions
	creds    *fakeCredentials
	masters  *fakeMasterdata
	clientID string
}

func newTestServer(t *testing.T, sess sessiondomain.Session) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)

	ts := &testServer{
		sessions: &fakeSessions{current: sess},
		creds:    &fakeCredentials{history: map[string][]csdomain.Credential{}},
		masters:  &fakeMasterdata{},
		clientID: uuid.NewString(),
	}
	ts.engine = NewEngine(EngineParams{
		Cfg:    config.Config{CORSOrigins: []string{"http://localhost:5173"}},
		ObsCfg: observability.Config{LogLevel: "info", Environment: "test"},
	})
	NewServer(ServerParams{
		Gin:           ts.engine,
		Cfg:           config.Config{},
		Log:           zap.NewNop(),
		Cookies:       cookie.NewManager(config.Config{}),
		Sessions:      ts.sessions,
		Credentials:   ts.creds,
		AuthzSvc:      authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		MasterdataSvc: ts.masters,
		OrderSvc:      fakeOrders{},
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cookie.DefaultCookieName, Value: ts.clientID})
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func resolved(role sessiondomain.Role) sessiondomain.Session {
	return sessiondomain.Session{
		State:   sessiondomain.StateResolved,
		Role:    role,
		Profile: sessiondomain.Profile{"username": "ravi"},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{})
	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientCookieIssued(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{State: sessiondomain.StateAnonymous})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.DefaultCookieName, cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{State: sessiondomain.StateAnonymous})
	ts.sessions.loginResp = sessiondomain.LoginResult{Success: true, Role: sessiondomain.RoleAdmin, Landing: "/admin"}

	rec := ts.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": " a@b.com ", "password": "pw", "role_type": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", ts.sessions.loginReq.Email)

	var resp struct {
		Data sessiondomain.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Success)
	assert.Equal(t, "/admin", resp.Data.Landing)
}

func TestLoginInvalidRoleType(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{State: sessiondomain.StateAnonymous})

	rec := ts.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "a@b.com", "password": "pw", "role_type": "root",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "role_type", payload.Errors[0].Field)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
	rec := ts.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ts.sessions.loggedOut)
}

func TestSessionLanding(t *testing.T) {
	ts := newTestServer(t, resolved(sessiondomain.RoleDirect))
	rec := ts.do(t, http.MethodGet, "/api/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data sessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sessiondomain.StateResolved, resp.Data.State)
	assert.Equal(t, "/corporate", resp.Data.Landing)
}

func TestRouteGuards(t *testing.T) {
	tests := []struct {
		name    string
		session sessiondomain.Session
		method  string
		path    string
		status  int
	}{
		{"anonymous masters", sessiondomain.Session{State: sessiondomain.StateAnonymous}, http.MethodGet, "/api/masters/customer", http.StatusUnauthorized},
		{"unresolved orders", sessiondomain.Session{State: sessiondomain.StateUnresolved, Role: sessiondomain.RoleUnknown}, http.MethodPost, "/api/orders/draft", http.StatusForbidden},
		{"unknown role", sessiondomain.Session{State: sessiondomain.StateResolved, Role: sessiondomain.RoleUnknown}, http.MethodGet, "/api/masters/customer", http.StatusForbidden},
		{"direct masters", resolved(sessiondomain.RoleDirect), http.MethodGet, "/api/masters/customer", http.StatusOK},
		{"distributor order draft", resolved(sessiondomain.RoleDistributor), http.MethodPost, "/api/orders/draft", http.StatusOK},
		{"admin dashboard as admin", resolved(sessiondomain.RoleAdmin), http.MethodGet, "/api/dashboards/admin", http.StatusOK},
		{"admin dashboard as distributor", resolved(sessiondomain.RoleDistributor), http.MethodGet, "/api/dashboards/admin", http.StatusForbidden},
		{"corporate dashboard as direct", resolved(sessiondomain.RoleDirect), http.MethodGet, "/api/dashboards/corporate", http.StatusOK},
		{"corporate dashboard as distributor", resolved(sessiondomain.RoleDistributor), http.MethodGet, "/api/dashboards/corporate", http.StatusForbidden},
		{"distributor dashboard as admin", resolved(sessiondomain.RoleAdmin), http.MethodGet, "/api/dashboards/distributor", http.StatusOK},
		{"missing dashboard", resolved(sessiondomain.RoleAdmin), http.MethodGet, "/api/dashboards/reports", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.session)
			rec := ts.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestSignupAdminIsPublic(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{State: sessiondomain.StateAnonymous})
	rec := ts.do(t, http.MethodPost, "/api/auth/signup/admin", gin.H{
		"username": "root", "email": "root@x.com", "password": "secret1", "mobile_number": "99",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProvisionAccount(t *testing.T) {
	ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
	rec := ts.do(t, http.MethodPost, "/api/auth/provision/distributor/D01", gin.H{
		"email": "d@x.com", "password": "secret1", "updates": gin.H{"username": "dist"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "distributor", ts.sessions.provision.Kind)
	assert.Equal(t, "D01", ts.sessions.provision.Code)
	assert.Equal(t, "dist", ts.sessions.provision.Updates["username"])
}

func TestCredentials(t *testing.T) {
	ts := newTestServer(t, sessiondomain.Session{State: sessiondomain.StateAnonymous})
	_, _ = ts.creds.Save(context.Background(), ts.clientID, "admin", "a@x.com", "a")
	_, _ = ts.creds.Save(context.Background(), ts.clientID, "admin", "b@x.com", "b")

	rec := ts.do(t, http.MethodGet, "/api/credentials/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []csdomain.Credential `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "b@x.com", resp.Data[0].Email)

	rec = ts.do(t, http.MethodDelete, "/api/credentials/admin/b@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a@x.com", resp.Data[0].Email)

	rec = ts.do(t, http.MethodDelete, "/api/credentials/admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/credentials/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestMasters(t *testing.T) {
	t.Run("invalid kind", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodGet, "/api/masters/vendors", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodPost, "/api/masters/customer", gin.H{"customer_code": "C9"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Customer Name is required.", decodeError(t, rec).Message)
		assert.Nil(t, ts.masters.created)
	})

	t.Run("create", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodPost, "/api/masters/customer", gin.H{"customer_name": "Acme"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme", ts.masters.created["customer_name"])
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodGet, "/api/masters/customer/C404", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upstream down", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodPut, "/api/masters/customer/C1", gin.H{"customer_name": "Acme"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestOrders(t *testing.T) {
	t.Run("empty submit", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleDirect))
		rec := ts.do(t, http.MethodPost, "/api/orders", gin.H{"order_number": "SO-1", "lines": []any{}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No items in the order.", decodeError(t, rec).Message)
	})

	t.Run("submit", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleDirect))
		rec := ts.do(t, http.MethodPost, "/api/orders", gin.H{
			"order_number": "SO-1",
			"lines":        []gin.H{{"item_code": "I1", "rate": 100, "quantity": 1, "gst": 18}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"success":true,"order_number":"SO-1"}}`, rec.Body.String())
	})

	t.Run("unknown order", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodGet, "/api/orders/SO-404", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("voucher", func(t *testing.T) {
		ts := newTestServer(t, resolved(sessiondomain.RoleAdmin))
		rec := ts.do(t, http.MethodGet, "/api/orders/SO%201/voucher", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="SO_1.pdf"`)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{sessiondomain.ErrNoSession, http.StatusUnauthorized},
		{authorization.ErrForbidden, http.StatusForbidden},
		{sessiondomain.ErrInvalidTransition, http.StatusConflict},
		{orderdomain.ErrNotFound, http.StatusNotFound},
		{&backend.Error{Status: http.StatusNotFound, Message: "missing"}, http.StatusNotFound},
		{&backend.Error{Status: http.StatusBadRequest, Message: "duplicate code"}, http.StatusBadGateway},
		{backend.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{orderdomain.PastDeliveryDate("Widget"), http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := mapError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
