package api

import (
	"context"
	"net/url"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// SignIn exchanges credentials for a bearer token and profile.
func (c *Client) SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error) {
	var out models.SignInResponse
	if err := c.post(ctx, "/api/auth/signin", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp registers a citizen account. The account must verify its email
// via OTP before signing in.
func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := c.post(ctx, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUpOrganization registers an organization and its admin account.
func (c *Client) SignUpOrganization(ctx context.Context, req models.OrgSignUpRequest) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := c.post(ctx, "/api/auth/signup-organization", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail confirms an account with the mailed OTP code.
func (c *Client) VerifyEmail(ctx context.Context, email, otpCode string) (*models.APIMessage, error) {
	var out models.APIMessage
	req := models.VerifyEmailRequest{Email: email, OTPCode: otpCode}
	if err := c.post(ctx, "/api/auth/verify-email", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP requests a fresh verification code.
func (c *Client) ResendOTP(ctx context.Context, email string) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := c.post(ctx, "/api/auth/resend-otp", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the profile behind the bearer token. Used to
// validate a restored session at startup; an auth failure here clears it.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckUsername reports whether a username is still available.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	q := url.Values{"username": {username}}
	if err := c.get(ctx, "/api/auth/check-username", q, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// CheckEmail reports whether an email is still available.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	q := url.Values{"email": {email}}
	if err := c.get(ctx, "/api/auth/check-email", q, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}
