// Package auth exchanges tenant client credentials for signed access tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"tenantgate/pkg/metrics"
	"tenantgate/pkg/problems"
	"tenantgate/pkg/secrets"
	"tenantgate/pkg/tenants"
	"tenantgate/pkg/token"
)

const tokenType = "Bearer"

// Signer issues tokens for a tenant payload.
type Signer interface {
	Sign(p token.Payload) (string, error)
	ExpiresIn() int64
}

// Summary is the public part of a tenant returned at login.
type Summary struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	BackendURL string `json:"backend_url"`
}

type Result struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
	Tenant      Summary `json:"tenant"`
}

type Service struct {
	store  tenants.Store
	hasher secrets.Hasher
	signer Signer
	log    *zap.SugaredLogger

	// dummy is verified against when the client id is unknown.
	dummy string
}

func NewService(store tenants.Store, hasher secrets.Hasher, signer Signer, log *zap.SugaredLogger) (*Service, error) {
	dummy, err := hasher.Hash("tenantgate-unknown-client")
	if err != nil {
		return nil, problems.Configuration("secret hasher unavailable", err)
	}
	return &Service{store: store, hasher: hasher, signer: signer, log: log, dummy: dummy}, nil
}

var tracer = otel.Tracer("tenantgate/internal/auth")

// Authenticate checks clientID and secret and issues a token. Unknown client
// ids and wrong secrets both return problems.ErrInvalidCredentials; a disabled
// tenant returns problems.ErrTenantDisabled before its secret is checked.
func (s *Service) Authenticate(ctx context.Context, clientID, secret string) (Result, error) {
	ctx, span := tracer.Start(ctx, "auth.Authenticate")
	defer span.End()
	span.SetAttributes(attribute.String("client_id", clientID))

	res, err := s.authenticate(ctx, clientID, secret)
	outcome := "success"
	if err != nil {
		kind := problems.KindOf(err)
		outcome = kind.String()
		if !kind.ClientFault() {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
	} else {
		span.SetAttributes(attribute.String("tenant_id", res.Tenant.ID))
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	return res, err
}

func (s *Service) authenticate(ctx context.Context, clientID, secret string) (Result, error) {
	s.log.Infow("login attempt", "client_id", clientID)

	t, err := s.store.FindByClientID(ctx, clientID)
	if errors.Is(err, tenants.ErrNotFound) {
		s.hasher.Verify(secret, s.dummy)
		s.log.Warnw("login failed: unknown client", "client_id", clientID)
		return Result{}, problems.ErrInvalidCredentials
	}
	if err != nil {
		s.log.Errorw("tenant lookup failed", "client_id", clientID, "err", err)
		return Result{}, problems.Infrastructure("tenant lookup failed", err)
	}

	if t.IsDisabled {
		s.log.Warnw("login failed: tenant disabled", "client_id", clientID, "tenant_id", t.ID)
		return Result{}, problems.ErrTenantDisabled
	}
	if !s.hasher.Verify(secret, t.HashedSecret) {
		s.log.Warnw("login failed: invalid secret", "client_id", clientID, "tenant_id", t.ID)
		return Result{}, problems.ErrInvalidCredentials
	}

	payload := token.Payload{
		TenantID:   t.ID,
		ClientID:   t.ClientID,
		BackendURL: t.BackendURL,
		Metadata:   s.metadata(t),
	}
	signed, err := s.signer.Sign(payload)
	if err != nil {
		s.log.Errorw("token signing failed", "client_id", clientID, "tenant_id", t.ID, "err", err)
		return Result{}, problems.Infrastructure("token signing failed", err)
	}

	s.log.Infow("login succeeded", "client_id", clientID, "tenant_id", t.ID)
	return Result{
		AccessToken: signed,
		TokenType:   tokenType,
		ExpiresIn:   s.signer.ExpiresIn(),
		Tenant:      Summary{ID: t.ID, ClientID: t.ClientID, BackendURL: t.BackendURL},
	}, nil
}

// metadata parses the stored document. A corrupt document does not block
// login; the token carries null instead.
func (s *Service) metadata(t tenants.Tenant) tenants.Metadata {
	if strings.TrimSpace(t.Metadata) == "" {
		return nil
	}
	m, err := tenants.ParseMetadata(t.Metadata)
	if err != nil {
		s.log.Warnw("tenant metadata unreadable, issuing token without it", "client_id", t.ClientID, "tenant_id", t.ID, "err", err)
		return nil
	}
	return m
}
