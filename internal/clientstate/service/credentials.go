package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store  domain.Store
	Locker domain.Locker
	Clock  clock.Clock
	Log    *zap.Logger
}

type Service struct {
	store  domain.Store
	locker domain.Locker
	clock  clock.Clock
	log    *zap.Logger
}

func New(p Params) domain.CredentialService {
	return &Service{
		store:  p.Store,
		locker: p.Locker,
		clock:  p.Clock,
		log:    p.Log.Named("clientstate.credentials"),
	}
}

func (s *Service) History(ctx context.Context, clientID, role string) ([]domain.Credential, error) {
	key, err := historyKey(clientID, role)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, clientID, key), nil
}

// Save puts email at the head of the role's history, dropping any older entry for it.
func (s *Service) Save(ctx context.Context, clientID, role, email, username string) ([]domain.Credential, error) {
	key, err := historyKey(clientID, role)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current := s.load(ctx, clientID, key)
	updated := make([]domain.Credential, 0, len(current)+1)
	updated = append(updated, domain.Credential{
		Email:     email,
		Username:  strings.TrimSpace(username),
		Timestamp: s.clock.Now().UTC(),
	})
	for _, cred := range current {
		if cred.Email != email {
			updated = append(updated, cred)
		}
	}

	if err := s.persist(ctx, clientID, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Remove(ctx context.Context, clientID, role, email string) ([]domain.Credential, error) {
	key, err := historyKey(clientID, role)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current := s.load(ctx, clientID, key)
	updated := make([]domain.Credential, 0, len(current))
	for _, cred := range current {
		if cred.Email != email {
			updated = append(updated, cred)
		}
	}

	if err := s.persist(ctx, clientID, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Clear(ctx context.Context, clientID, role string) error {
	key, err := historyKey(clientID, role)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, clientID, key)
}

// load treats unreadable history as empty; autofill is a convenience.
func (s *Service) load(ctx context.Context, clientID, key string) []domain.Credential {
	raw, ok, err := s.store.Get(ctx, clientID, key)
	if err != nil {
		s.log.Warn("failed to load credential history", zap.String("key", key), zap.Error(err))
		return []domain.Credential{}
	}
	if !ok || raw == "" {
		return []domain.Credential{}
	}

	var history []domain.Credential
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.log.Warn("discarding malformed credential history", zap.String("key", key), zap.Error(err))
		return []domain.Credential{}
	}
	return history
}

func (s *Service) persist(ctx context.Context, clientID, key string, history []domain.Credential) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, clientID, key, string(raw))
}

func historyKey(clientID, role string) (string, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", domain.ErrInvalidClient
	}
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "distributor", "corporate":
		return domain.CredentialHistoryKey(role), nil
	default:
		return "", domain.ErrInvalidRole
	}
}
