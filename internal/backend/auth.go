package backend

import (
	"context"
	"errors"
	"net/http"
)

var errEmptyPhoneCodeHash = errors.New("backend: send-code returned an empty phone_code_hash")

// SendCode asks the backend to deliver a verification code and returns the
// phone_code_hash that must be echoed back to SignIn.
func (c *Client) SendCode(ctx context.Context, creds Credentials) (string, error) {
	if creds.APIID != "" || creds.APIHash != "" {
		c.log.Warn().Msg("api id/hash are not part of the send-code request and will not be transmitted")
	}
	var resp SendCodeResp
	if err := c.do(ctx, http.MethodPost, "/auth/send-code", SendCodeReq{PhoneNumber: creds.Phone}, &resp); err != nil {
		return "", err
	}
	if resp.PhoneCodeHash == "" {
		return "", errEmptyPhoneCodeHash
	}
	return resp.PhoneCodeHash, nil
}

// SignIn verifies the code against the hash from the latest SendCode.
func (c *Client) SignIn(ctx context.Context, code, phoneCodeHash string) error {
	return c.do(ctx, http.MethodPost, "/auth/sign-in", SignInReq{Code: code, PhoneCodeHash: phoneCodeHash}, nil)
}

// SignInWithPassword completes sign-in for accounts with two-step verification.
func (c *Client) SignInWithPassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/sign-in-password", PasswordReq{Password: password}, nil)
}
