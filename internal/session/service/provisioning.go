package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/identity"
	"github.com/smallbiznis/orderdesk/internal/session/domain"
	"go.uber.org/zap"
)

var provisionResources = map[string]string{
	"distributor": "distributors",
	"corporate":   "corporates",
}

// SignupAdmin creates an identity and registers it as an admin. When the
// backend refuses, the identity is deleted again.
func (s *Service) SignupAdmin(ctx context.Context, req domain.SignupAdminRequest) (domain.SignupResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.SignupResult{}, domain.ErrInvalidUsername
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.SignupResult{}, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return domain.SignupResult{}, domain.ErrInvalidPassword
	}

	token, err := s.identity.SignUp(ctx, email, req.Password)
	if err != nil {
		return domain.SignupResult{Success: false, Message: identity.Message(err)}, nil
	}

	res, err := s.backend.SignupAdmin(ctx, token.IDToken, map[string]any{
		"username":      username,
		"email":         email,
		"mobile_number": strings.TrimSpace(req.MobileNumber),
		"firebaseUid":   token.UID,
	})
	if err != nil {
		s.compensate(ctx, token, "admin")
		return domain.SignupResult{Success: false, Message: backendMessage(err)}, nil
	}

	role := strings.TrimSpace(res.Role)
	if role == "" {
		role = string(domain.RoleAdmin)
	}
	return domain.SignupResult{Success: true, Role: role, Message: res.Message}, nil
}

// ProvisionAccount gives an existing distributor or corporate record a
// login: it creates the identity, then stamps its uid and email on the record.
func (s *Service) ProvisionAccount(ctx context.Context, req domain.ProvisionRequest) (domain.SignupResult, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	resource, ok := provisionResources[kind]
	if !ok {
		return domain.SignupResult{}, domain.ErrInvalidKind
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.SignupResult{}, domain.ErrInvalidCode
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.SignupResult{}, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return domain.SignupResult{}, domain.ErrInvalidPassword
	}

	token, err := s.identity.SignUp(ctx, email, req.Password)
	if err != nil {
		return domain.SignupResult{Success: false, Message: identity.Message(err)}, nil
	}

	payload := make(map[string]any, len(req.Updates)+2)
	for k, v := range req.Updates {
		payload[k] = v
	}
	payload["firebase_uid"] = token.UID
	payload["email"] = email

	res, err := s.backend.Update(ctx, token.IDToken, resource, code, payload)
	if err != nil {
		s.compensate(ctx, token, kind)
		return domain.SignupResult{Success: false, Message: backendMessage(err)}, nil
	}
	return domain.SignupResult{Success: true, Message: res.Message, AffectedRows: res.AffectedRows}, nil
}

func (s *Service) compensate(ctx context.Context, token identity.Token, kind string) {
	if err := s.identity.Delete(context.WithoutCancel(ctx), token.IDToken); err != nil {
		s.log.Error("failed to delete identity after rejected signup",
			zap.String("kind", kind),
			zap.String("uid", token.UID),
			zap.Error(err),
		)
		return
	}
	s.log.Info("deleted identity after rejected signup", zap.String("kind", kind), zap.String("uid", token.UID))
}

func backendMessage(err error) string {
	var berr *backend.Error
	if errors.As(err, &berr) && berr.Message != "" {
		return berr.Message
	}
	if errors.Is(err, backend.ErrUpstreamUnavailable) {
		return "The server is unavailable. Try again."
	}
	return "Signup failed"
}
