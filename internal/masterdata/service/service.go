package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/cache"
	"github.com/smallbiznis/orderdesk/internal/masterdata/domain"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const listTTL = 30 * time.Second

type Params struct {
	fx.In

	Sessions sessiondomain.Reader
	Backend  domain.Backend
	Log      *zap.Logger
}

type Service struct {
	sessions sessiondomain.Reader
	backend  domain.Backend
	lists    cache.Cache[string, []domain.Entry]
	log      *zap.Logger

	mu   sync.Mutex
	keys map[string]map[string]struct{} // client id -> cached list keys
}

func New(p Params) domain.Service {
	return &Service{
		sessions: p.Sessions,
		backend:  p.Backend,
		lists:    cache.NewTTLCache[string, []domain.Entry](),
		log:      p.Log.Named("masterdata.service"),
		keys:     make(map[string]map[string]struct{}),
	}
}

// Lists are cached per identity and role, never per browser alone.
func listKey(sess sessiondomain.Session, kind domain.Kind) string {
	return strings.Join([]string{sess.ClientID, sess.UID, sess.Email, string(sess.Role), string(kind)}, "|")
}

func (s *Service) List(ctx context.Context, clientID string, kind domain.Kind) ([]domain.Entry, error) {
	if _, ok := domain.ParseKind(string(kind)); !ok {
		return nil, domain.ErrInvalidKind
	}
	sess, err := s.resolved(ctx, clientID)
	if err != nil {
		return nil, err
	}
	key := listKey(sess, kind)
	if cached, ok := s.lists.Get(key); ok {
		return cached, nil
	}

	token, err := s.sessions.Token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	records, err := s.backend.List(ctx, token, string(kind))
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		entries = append(entries, domain.NewEntry(kind, rec))
	}
	s.lists.Set(key, entries, listTTL)
	s.mu.Lock()
	if s.keys[clientID] == nil {
		s.keys[clientID] = make(map[string]struct{})
	}
	s.keys[clientID][key] = struct{}{}
	s.mu.Unlock()
	return entries, nil
}

// Forget drops every list cached for clientID.
func (s *Service) Forget(clientID string) {
	s.mu.Lock()
	keys := s.keys[clientID]
	delete(s.keys, clientID)
	s.mu.Unlock()

	for key := range keys {
		s.lists.Delete(key)
	}
}

func (s *Service) Get(ctx context.Context, clientID string, kind domain.Kind, code string) (domain.Entry, error) {
	if _, ok := domain.ParseKind(string(kind)); !ok {
		return domain.Entry{}, domain.ErrInvalidKind
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Entry{}, domain.ErrInvalidCode
	}

	token, err := s.token(ctx, clientID)
	if err != nil {
		return domain.Entry{}, err
	}
	records, err := s.backend.Get(ctx, token, string(kind), code)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return domain.Entry{}, domain.ErrNotFound
		}
		return domain.Entry{}, err
	}
	rec, ok := backend.First(records)
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	return domain.NewEntry(kind, rec), nil
}

func (s *Service) Create(ctx context.Context, clientID string, kind domain.Kind, fields map[string]any) (backend.Result, error) {
	if err := domain.Validate(kind, fields); err != nil {
		return backend.Result{}, err
	}
	token, err := s.token(ctx, clientID)
	if err != nil {
		return backend.Result{}, err
	}

	res, err := s.backend.Create(ctx, token, string(kind), withoutPassword(fields))
	if err != nil {
		return backend.Result{}, err
	}
	s.lists.Purge()
	s.log.Info("master record created", zap.String("kind", string(kind)))
	return res, nil
}

func (s *Service) Update(ctx context.Context, clientID string, kind domain.Kind, code string, fields map[string]any) (backend.Result, error) {
	if err := domain.Validate(kind, fields); err != nil {
		return backend.Result{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return backend.Result{}, domain.ErrInvalidCode
	}
	token, err := s.token(ctx, clientID)
	if err != nil {
		return backend.Result{}, err
	}

	res, err := s.backend.Update(ctx, token, string(kind), code, withoutPassword(fields))
	if err != nil {
		return backend.Result{}, err
	}
	s.lists.Purge()
	s.log.Info("master record updated", zap.String("kind", string(kind)), zap.String("code", code))
	return res, nil
}

func (s *Service) resolved(ctx context.Context, clientID string) (sessiondomain.Session, error) {
	sess, err := s.sessions.Current(ctx, clientID)
	if err != nil {
		return sessiondomain.Session{}, err
	}
	if sess.State != sessiondomain.StateResolved {
		return sessiondomain.Session{}, sessiondomain.ErrNoSession
	}
	return sess, nil
}

func (s *Service) token(ctx context.Context, clientID string) (string, error) {
	if _, err := s.resolved(ctx, clientID); err != nil {
		return "", err
	}
	return s.sessions.Token(ctx, clientID)
}

// withoutPassword drops credentials; logins are provisioned through the
// identity provider, never stored on master records.
func withoutPassword(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.EqualFold(k, "password") {
			continue
		}
		out[k] = v
	}
	return out
}
