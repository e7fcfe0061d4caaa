package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/identity"
	"github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"github.com/smallbiznis/orderdesk/internal/ratelimit"
	"github.com/smallbiznis/orderdesk/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const tokenRefreshLeeway = 5 * time.Minute

var sessionKeys = []string{
	csdomain.KeyUserType,
	csdomain.KeyUserRole,
	csdomain.KeyUserData,
	csdomain.KeyIDToken,
	csdomain.KeyRefreshToken,
}

type Params struct {
	fx.In

	Store       csdomain.Store
	Locker      csdomain.Locker
	Credentials csdomain.CredentialService
	Identity    identity.Provider
	Backend     domain.Backend
	Registry    *Registry
	Limiter     *ratelimit.LoginLimiter `optional:"true"`
	Metrics     *metrics.SessionMetrics `optional:"true"`
	Clock       clock.Clock
	Log         *zap.Logger
}

type Service struct {
	store       csdomain.Store
	locker      csdomain.Locker
	credentials csdomain.CredentialService
	identity    identity.Provider
	backend     domain.Backend
	registry    *Registry
	limiter     *ratelimit.LoginLimiter
	metrics     *metrics.SessionMetrics
	resolver    *Resolver
	clock       clock.Clock
	log         *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		store:       p.Store,
		locker:      p.Locker,
		credentials: p.Credentials,
		identity:    p.Identity,
		backend:     p.Backend,
		registry:    p.Registry,
		limiter:     p.Limiter,
		metrics:     p.Metrics,
		resolver:    NewResolver(p.Backend, p.Metrics, p.Log),
		clock:       p.Clock,
		log:         p.Log.Named("session.service"),
	}
}

// Current returns the client's session, loading it from the state store
// the first time the client is seen by this process.
func (s *Service) Current(ctx context.Context, clientID string) (domain.Session, error) {
	if strings.TrimSpace(clientID) == "" {
		return domain.Session{}, domain.ErrInvalidClient
	}
	if sess, ok := s.registry.Get(clientID); ok {
		return sess, nil
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return domain.Session{}, err
	}
	defer unlock()
	return s.loadLocked(ctx, clientID)
}

func (s *Service) Login(ctx context.Context, clientID string, req domain.LoginRequest) (domain.LoginResult, error) {
	if strings.TrimSpace(clientID) == "" {
		return domain.LoginResult{}, domain.ErrInvalidClient
	}
	roleType, ok := domain.ParseRoleType(req.RoleType)
	if !ok {
		return domain.LoginResult{}, domain.ErrInvalidRoleType
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return domain.LoginResult{}, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return domain.LoginResult{}, domain.ErrInvalidPassword
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return domain.LoginResult{}, err
	}
	defer unlock()

	current, err := s.loadLocked(ctx, clientID)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if err := domain.Transition(current.State, domain.StateAuthenticating); err != nil {
		return domain.LoginResult{}, err
	}

	if !s.limiter.Allow(ctx, clientID, email) {
		s.metrics.RecordLogin(string(roleType), "rate_limited")
		return domain.LoginResult{Success: false, Message: "Too many attempts. Try again later."}, nil
	}

	s.publish(s.withState(current, domain.StateAuthenticating))

	token, err := s.identity.SignIn(ctx, email, req.Password)
	if err != nil {
		s.publish(s.withState(current, current.State))
		s.metrics.RecordLogin(string(roleType), "rejected")
		s.log.Info("credential exchange rejected", zap.String("role_type", string(roleType)), zap.Error(err))
		return domain.LoginResult{Success: false, Message: identity.Message(err)}, nil
	}

	if err := s.saveTokens(ctx, clientID, token.IDToken, token.RefreshToken); err != nil {
		s.publish(s.withState(current, current.State))
		return domain.LoginResult{}, err
	}

	next := domain.Session{ClientID: clientID, UID: token.UID, Email: token.Email}
	res := s.resolver.ResolveScoped(ctx, token.IDToken, roleType)
	if !res.Found() {
		next.State = domain.StateUnresolved
		next.Role = domain.RoleUnknown
		if err := s.saveUnresolved(ctx, clientID); err != nil {
			s.publish(s.withState(current, current.State))
			return domain.LoginResult{}, err
		}
		s.publish(next)
		s.metrics.RecordLogin(string(roleType), "not_provisioned")
		return domain.LoginResult{Success: false, Message: domain.MessageNotProvisioned}, nil
	}

	if err := s.saveResolution(ctx, clientID, res); err != nil {
		s.publish(s.withState(current, current.State))
		return domain.LoginResult{}, err
	}
	if _, err := s.credentials.Save(ctx, clientID, string(roleType), email, profileName(res.Profile)); err != nil {
		s.log.Warn("failed to record credential history", zap.Error(err))
	}

	next.State = domain.StateResolved
	next.Role = res.Role
	next.RoleType = res.RoleType
	next.Profile = res.Profile
	s.publish(next)
	s.metrics.RecordLogin(string(roleType), "success")

	return domain.LoginResult{
		Success:  true,
		Role:     res.Role,
		RoleType: res.RoleType,
		Profile:  res.Profile,
		Landing:  domain.Landing(res.Role),
	}, nil
}

// Restore handles the identity provider's session-restore notification. An
// empty token means the provider has no signed-in identity.
func (s *Service) Restore(ctx context.Context, clientID string, req domain.RestoreRequest) (domain.Session, error) {
	if strings.TrimSpace(clientID) == "" {
		return domain.Session{}, domain.ErrInvalidClient
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return domain.Session{}, err
	}
	defer unlock()

	current, err := s.loadLocked(ctx, clientID)
	if err != nil {
		return domain.Session{}, err
	}

	idToken := strings.TrimSpace(req.IDToken)
	if idToken == "" {
		return s.logoutLocked(ctx, current)
	}
	claims, err := identity.ParseClaims(idToken)
	if err != nil {
		return domain.Session{}, err
	}
	if current.Authenticated() {
		return current, nil
	}
	if err := domain.Transition(current.State, domain.StateAuthenticating); err != nil {
		return domain.Session{}, err
	}
	s.publish(s.withState(current, domain.StateAuthenticating))

	if err := s.saveTokens(ctx, clientID, idToken, strings.TrimSpace(req.RefreshToken)); err != nil {
		s.publish(s.withState(current, current.State))
		return domain.Session{}, err
	}

	hint := domain.RoleType(s.get(ctx, clientID, csdomain.KeyUserType))
	res := s.resolver.Resolve(ctx, idToken, hint)

	next := domain.Session{ClientID: clientID, UID: claims.UserID, Email: claims.Email}
	if res.Found() {
		if err := s.saveResolution(ctx, clientID, res); err != nil {
			s.publish(s.withState(current, current.State))
			return domain.Session{}, err
		}
		next.State = domain.StateResolved
		next.Role = res.Role
		next.RoleType = res.RoleType
		next.Profile = res.Profile
	} else {
		if err := s.saveUnresolved(ctx, clientID); err != nil {
			s.publish(s.withState(current, current.State))
			return domain.Session{}, err
		}
		next.State = domain.StateUnresolved
		next.Role = domain.RoleUnknown
	}
	s.publish(next)
	return s.registryCopy(next), nil
}

// Logout clears the hint, cached role, profile and identity tokens. Idempotent.
func (s *Service) Logout(ctx context.Context, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return domain.ErrInvalidClient
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.loadLocked(ctx, clientID)
	if err != nil {
		return err
	}
	_, err = s.logoutLocked(ctx, current)
	return err
}

// Token returns the client's identity token, refreshing it when it is about to expire.
func (s *Service) Token(ctx context.Context, clientID string) (string, error) {
	idToken := s.get(ctx, clientID, csdomain.KeyIDToken)
	if idToken == "" {
		return "", domain.ErrNoSession
	}

	claims, err := identity.ParseClaims(idToken)
	if err == nil && !claims.ExpiresSoon(s.clock.Now(), tokenRefreshLeeway) {
		return idToken, nil
	}
	refreshToken := s.get(ctx, clientID, csdomain.KeyRefreshToken)
	if refreshToken == "" {
		return idToken, nil
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return "", err
	}
	defer unlock()

	fresh, err := s.identity.Refresh(ctx, refreshToken)
	if err != nil {
		s.log.Warn("identity token refresh failed", zap.Error(err))
		return idToken, nil
	}
	if err := s.saveTokens(ctx, clientID, fresh.IDToken, fresh.RefreshToken); err != nil {
		return "", err
	}
	return fresh.IDToken, nil
}

func (s *Service) logoutLocked(ctx context.Context, current domain.Session) (domain.Session, error) {
	if current.State != domain.StateAnonymous {
		if err := domain.Transition(current.State, domain.StateAnonymous); err != nil {
			return domain.Session{}, err
		}
	}
	if err := s.store.Delete(ctx, current.ClientID, sessionKeys...); err != nil {
		return domain.Session{}, err
	}

	next := domain.Session{ClientID: current.ClientID, State: domain.StateAnonymous}
	s.publish(next)
	if current.State != domain.StateAnonymous {
		s.log.Info("session signed out", zap.String("client_id", current.ClientID))
	}
	return s.registryCopy(next), nil
}

// loadLocked returns the published session or rebuilds it from the store.
// The caller holds the client lock.
func (s *Service) loadLocked(ctx context.Context, clientID string) (domain.Session, error) {
	if sess, ok := s.registry.Get(clientID); ok {
		return sess, nil
	}

	sess := domain.Session{ClientID: clientID, State: domain.StateAnonymous}
	idToken, ok, err := s.store.Get(ctx, clientID, csdomain.KeyIDToken)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok || idToken == "" {
		s.publish(sess)
		return sess, nil
	}

	if claims, err := identity.ParseClaims(idToken); err == nil {
		sess.UID = claims.UserID
		sess.Email = claims.Email
	}
	sess.State = domain.StateUnresolved
	sess.Role = domain.RoleUnknown

	role, _ := domain.ParseRole(s.get(ctx, clientID, csdomain.KeyUserRole))
	roleType, _ := domain.ParseRoleType(s.get(ctx, clientID, csdomain.KeyUserType))
	var profile domain.Profile
	if raw := s.get(ctx, clientID, csdomain.KeyUserData); raw != "" {
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			s.log.Warn("discarding malformed stored profile", zap.Error(err))
			profile = nil
		}
	}
	if role != "" && role != domain.RoleUnknown && len(profile) > 0 {
		sess.State = domain.StateResolved
		sess.Role = role
		sess.RoleType = roleType
		sess.Profile = profile
	}

	s.publish(sess)
	return s.registryCopy(sess), nil
}

func (s *Service) saveTokens(ctx context.Context, clientID, idToken, refreshToken string) error {
	if err := s.store.Set(ctx, clientID, csdomain.KeyIDToken, idToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return s.store.Delete(ctx, clientID, csdomain.KeyRefreshToken)
	}
	return s.store.Set(ctx, clientID, csdomain.KeyRefreshToken, refreshToken)
}

func (s *Service) saveResolution(ctx context.Context, clientID string, res domain.Resolution) error {
	profile, err := json.Marshal(res.Profile)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, clientID, csdomain.KeyUserType, string(res.RoleType)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, clientID, csdomain.KeyUserRole, string(res.Role)); err != nil {
		return err
	}
	return s.store.Set(ctx, clientID, csdomain.KeyUserData, string(profile))
}

func (s *Service) saveUnresolved(ctx context.Context, clientID string) error {
	if err := s.store.Delete(ctx, clientID, csdomain.KeyUserType, csdomain.KeyUserData); err != nil {
		return err
	}
	return s.store.Set(ctx, clientID, csdomain.KeyUserRole, string(domain.RoleUnknown))
}

func (s *Service) get(ctx context.Context, clientID, key string) string {
	value, ok, err := s.store.Get(ctx, clientID, key)
	if err != nil {
		s.log.Warn("failed to read client state", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func (s *Service) withState(sess domain.Session, state domain.State) domain.Session {
	sess.State = state
	return sess
}

func (s *Service) publish(sess domain.Session) {
	sess.UpdatedAt = s.clock.Now().UTC()
	s.registry.publish(sess)
}

func (s *Service) registryCopy(sess domain.Session) domain.Session {
	if published, ok := s.registry.Get(sess.ClientID); ok {
		return published
	}
	return sess.Clone()
}

func profileName(p domain.Profile) string {
	for _, key := range []string{"username", "customer_name", "name"} {
		if v := strings.TrimSpace(p.String(key)); v != "" {
			return v
		}
	}
	return ""
}
