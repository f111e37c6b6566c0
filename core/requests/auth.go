// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"codeberg.org/yomu/mangadexkit/core/audit"
	"codeberg.org/yomu/mangadexkit/core/tokenmanager"
)

const reauthKey = "reauthenticate"

var errMissingAccessToken = errors.New("token response carried no access_token")

// Authenticated sends a request with the stored bearer token and decodes a success
// response into out.
//
// The access token is read from the store right before each dispatch. When the
// service answers 401, the token is refreshed and the request is sent exactly once
// more. Each dispatch, the refresh included, is gated on its own.
func (r *Requester) Authenticated(ctx context.Context, opts RequestOptions, out any) error {
	status, body, bearer, err := r.dispatchWithBearer(ctx, opts)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		log.Ctx(ctx).Debug().
			Str("url", opts.URL).
			Msg("Access token rejected, reauthenticating")

		if err := r.reauthenticate(ctx, bearer); err != nil {
			return err
		}

		status, body, _, err = r.dispatchWithBearer(ctx, opts)
		if err != nil {
			return err
		}
	}

	return interpret(status, body, out)
}

func (r *Requester) dispatchWithBearer(ctx context.Context, opts RequestOptions) (int, []byte, string, error) {
	bearer, err := r.store.GetAccessToken(ctx)
	if err != nil {
		return 0, nil, "", err
	}

	opts.bearer = bearer

	resp, body, err := r.Do(ctx, opts)
	if err != nil {
		return 0, nil, "", err
	}

	return resp.StatusCode, body, bearer, nil
}

// Reauthenticate exchanges the stored refresh token for a new access token.
// Concurrent calls share one request to the token endpoint.
func (r *Requester) Reauthenticate(ctx context.Context) error {
	return r.reauthenticate(ctx, "")
}

// reauthenticate refreshes the access token unless the token that was rejected
// has already been replaced by a concurrent refresh.
func (r *Requester) reauthenticate(ctx context.Context, rejected string) error {
	if r.alreadyRefreshed(ctx, rejected) {
		return nil
	}

	// The shared refresh runs detached from the cancellation of whichever caller started it.
	ch := r.reauth.DoChan(reauthKey, func() (any, error) {
		if r.alreadyRefreshed(ctx, rejected) {
			return nil, nil
		}

		err := r.refresh(context.WithoutCancel(ctx))
		if err != nil {
			r.metrics.ObserveReauth(audit.ReauthFailed)
		} else {
			r.metrics.ObserveReauth(audit.ReauthSucceeded)
		}

		return nil, err
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Requester) alreadyRefreshed(ctx context.Context, rejected string) bool {
	if rejected == "" {
		return false
	}

	current, err := r.store.GetAccessToken(ctx)

	return err == nil && current != rejected
}

func (r *Requester) refresh(ctx context.Context) error {
	refreshToken, err := r.store.GetRefreshToken(ctx)
	if err != nil {
		return err
	}

	credential, err := r.store.GetStoredCredential(ctx)
	if err != nil {
		return err
	}

	tokens, err := r.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {credential.ClientID},
		"client_secret": {credential.ClientSecret},
	})
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}

	if err := r.store.ReplaceAccessToken(ctx, tokens.AccessToken); err != nil {
		return err
	}

	if tokens.RefreshToken != "" {
		if err := r.store.ReplaceRefreshToken(ctx, tokens.RefreshToken); err != nil {
			return err
		}
	}

	log.Ctx(ctx).Info().
		Bool("rotated_refresh_token", tokens.RefreshToken != "").
		Msg("Access token refreshed")

	return nil
}

// Login performs a password grant and stores the credential with the issued tokens.
func (r *Requester) Login(ctx context.Context, credential tokenmanager.Credential) error {
	tokens, err := r.requestToken(ctx, url.Values{
		"grant_type":    {"password"},
		"username":      {credential.Username},
		"password":      {credential.Password},
		"client_id":     {credential.ClientID},
		"client_secret": {credential.ClientSecret},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == BadRequest || apiErr.Kind == Unauthorized) {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}

		if isContextCanceled(err) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrFailedToAuthenticate, err)
	}

	if err := r.store.StoreLogin(ctx, credential, tokens); err != nil {
		return fmt.Errorf("%w: storing tokens: %w", ErrFailedToAuthenticate, err)
	}

	log.Ctx(ctx).Info().
		Str("username", credential.Username).
		Msg("Logged in")

	return nil
}

// Logout forgets the credential and tokens and drops every cached response.
// It does not contact the service.
func (r *Requester) Logout(ctx context.Context) error {
	if err := r.store.Remove(ctx); err != nil {
		return err
	}

	r.InvalidateURLs("")

	return nil
}

// requestToken posts form to the token endpoint and extracts the token pair.
func (r *Requester) requestToken(ctx context.Context, form url.Values) (tokenmanager.TokenPair, error) {
	resp, body, err := r.Do(ctx, RequestOptions{
		Method:      http.MethodPost,
		URL:         r.authURL,
		Destination: audit.ToAuth,
		Payload:     form,
		NoCache:     true,
	})
	if err != nil {
		return tokenmanager.TokenPair{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return tokenmanager.TokenPair{}, NewAPIError(resp.StatusCode, body)
	}

	if !gjson.ValidBytes(body) {
		return tokenmanager.TokenPair{}, &DecodeError{Body: body, Err: errMissingAccessToken}
	}

	result := gjson.ParseBytes(body)

	tokens := tokenmanager.TokenPair{
		AccessToken:  result.Get("access_token").String(),
		RefreshToken: result.Get("refresh_token").String(),
	}
	if tokens.AccessToken == "" {
		return tokenmanager.TokenPair{}, &DecodeError{Body: body, Err: errMissingAccessToken}
	}

	return tokens, nil
}
