package supabase

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authGrant is the auth endpoint's token response shape.
type authGrant struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		Email string `json:"email"`
	} `json:"user"`
}

// session converts a grant into a service session.
func (g authGrant) session() service.Session {
	tokenType := g.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return service.Session{
		Email: g.User.Email,
		Token: oauth2.Token{
			AccessToken:  g.AccessToken,
			TokenType:    tokenType,
			RefreshToken: g.RefreshToken,
			Expiry:       time.Now().Add(time.Duration(g.ExpiresIn) * time.Second),
		},
	}
}

// SignUp implements service.Service. The backend sends a confirmation
// email; the account is not usable until the user follows it.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	u := c.baseURL + authPath + "/signup"
	return c.do(ctx, c.anon, http.MethodPost, u, credentials{Email: email, Password: password}, nil)
}

// SignIn implements service.Service.
func (c *Client) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	u := c.baseURL + authPath + "/token?grant_type=password"

	var grant authGrant
	if err := c.do(ctx, c.anon, http.MethodPost, u, credentials{Email: email, Password: password}, &grant); err != nil {
		return service.Session{}, err
	}

	sess := grant.session()
	if sess.Email == "" {
		// Some backends omit the user object on token grants.
		sess.Email = email
	}
	return sess, nil
}

// SignOut implements service.Service. Revocation is best effort: the
// local session is discarded by the caller regardless.
func (c *Client) SignOut(ctx context.Context) error {
	u := c.baseURL + authPath + "/logout"
	return c.do(ctx, c.httpClient(), http.MethodPost, u, nil, nil)
}
