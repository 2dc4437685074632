package supabase

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"taskdeck/internal/service"
)

// refreshTokenSource mints access tokens from the session's refresh token.
// It sits behind oauth2.ReuseTokenSource, so Token is only called once the
// cached access token has expired. Refreshed sessions are handed to the
// persist hook so the on-disk session and the holder stay current.
type refreshTokenSource struct {
	client  *Client
	persist func(service.Session)

	mu      sync.Mutex
	session service.Session
}

var _ oauth2.TokenSource = (*refreshTokenSource)(nil)

func (ts *refreshTokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.session.Token.Valid() {
		tok := ts.session.Token
		return &tok, nil
	}
	if ts.session.Token.RefreshToken == "" {
		return nil, errors.New("session has no refresh token (run: taskdeck login)")
	}

	u := ts.client.baseURL + authPath + "/token?grant_type=refresh_token"
	body := map[string]string{"refresh_token": ts.session.Token.RefreshToken}

	var grant authGrant
	if err := ts.client.do(context.Background(), ts.client.anon, http.MethodPost, u, body, &grant); err != nil {
		return nil, err
	}

	sess := grant.session()
	if sess.Email == "" {
		sess.Email = ts.session.Email
	}
	ts.session = sess

	ts.client.log.Debug("session_token_refreshed", "email", sess.Email)
	if ts.persist != nil {
		ts.persist(sess)
	}

	tok := sess.Token
	return &tok, nil
}
