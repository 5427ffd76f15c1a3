package topstep

import (
	"context"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
)

// TokenTTL is how long a freshly issued token is trusted locally. The
// provider issues 24h tokens; we keep one hour in hand.
const TokenTTL = 23 * time.Hour

// Authenticator owns the bearer credential and its login/validate protocol.
// It is safe for concurrent use; EnsureValid runs as one unit under the lock.
type Authenticator struct {
	req      *requester
	userName string
	apiKey   string
	ttl      time.Duration
	now      func() time.Time
	logger   glog.Logger

	mu   sync.Mutex
	cred model.Credential
}

func newAuthenticator(req *requester, userName, apiKey string, now func() time.Time, logger glog.Logger) *Authenticator {
	return &Authenticator{
		req:      req,
		userName: userName,
		apiKey:   apiKey,
		ttl:      TokenTTL,
		now:      now,
		logger:   logger,
	}
}

// Credential returns a copy of the current credential and whether one is set.
func (a *Authenticator) Credential() (model.Credential, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cred, a.cred.Present()
}

// Login exchanges the username and API key for a new bearer token.
func (a *Authenticator) Login(ctx context.Context) (model.Credential, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.login(ctx)
}

// Validate asks the provider whether the current token is still accepted.
// A rotated token in the reply replaces the credential. It returns false
// without a network call when no token is held.
func (a *Authenticator) Validate(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validate(ctx)
}

// EnsureValid makes sure the held token was accepted by the provider during
// this call, logging in again when it is missing, expired or rejected.
// The returned token is the one callers should send.
func (a *Authenticator) EnsureValid(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	switch {
	case !a.cred.Present():
		a.logger.Info("topstep: no token held, logging in")
		return a.loginAndConfirm(ctx)
	case a.cred.Expired(now):
		a.logger.Info("topstep: token expired, logging in again",
			"expired_at", a.cred.ExpiresAt.Format(time.RFC3339))
		return a.loginAndConfirm(ctx)
	}

	a.logger.Debug("topstep: token held", "expires_at", a.cred.ExpiresAt.Format(time.RFC3339))
	ok, err := a.validate(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return a.cred.Token, nil
	}
	a.logger.Warn("topstep: server rejected token, re-authenticating")
	return a.loginAndConfirm(ctx)
}

func (a *Authenticator) loginAndConfirm(ctx context.Context) (string, error) {
	if _, err := a.login(ctx); err != nil {
		return "", err
	}
	ok, err := a.validate(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", authError("topstep: freshly issued token was rejected by validate", nil)
	}
	return a.cred.Token, nil
}

func (a *Authenticator) login(ctx context.Context) (model.Credential, error) {
	a.logger.Info("topstep: logging in", "user", a.userName)

	var resp authResponse
	err := a.req.post(ctx, pathLogin, loginRequest{
		UserName: a.userName,
		APIKey:   a.apiKey,
	}, &resp, postOptions{accept: "text/plain", timeout: loginTimeout})
	if err != nil {
		return model.Credential{}, err
	}

	token := resp.issuedToken()
	if !resp.ok() || token == "" {
		msg := resp.message("unknown login error")
		a.logger.Error("topstep: login failed", "error", msg, "error_code", resp.ErrorCode)
		return model.Credential{}, authError("topstep: login failed: "+msg, map[string]any{
			"error_code": resp.ErrorCode,
		})
	}

	a.cred = model.Credential{Token: token, ExpiresAt: a.now().Add(a.ttl)}
	a.logger.Info("topstep: login succeeded", "expires_at", a.cred.ExpiresAt.Format(time.RFC3339))
	return a.cred, nil
}

func (a *Authenticator) validate(ctx context.Context) (bool, error) {
	if !a.cred.Present() {
		a.logger.Warn("topstep: validate called with no token present")
		return false, nil
	}

	a.logger.Debug("topstep: validating token")
	var resp authResponse
	err := a.req.post(ctx, pathValidate, nil, &resp, postOptions{
		token:   a.cred.Token,
		timeout: validateTimeout,
	})
	if err != nil {
		return false, err
	}

	if !resp.ok() {
		a.logger.Warn("topstep: token validation failed", "error", resp.message("unknown validation error"))
		return false, nil
	}

	if token := resp.issuedToken(); token != "" {
		a.cred = model.Credential{Token: token, ExpiresAt: a.now().Add(a.ttl)}
		a.logger.Info("topstep: token validated and refreshed",
			"expires_at", a.cred.ExpiresAt.Format(time.RFC3339))
	} else {
		a.logger.Debug("topstep: token valid, no refresh returned")
	}
	return true, nil
}
