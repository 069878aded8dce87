package soap

import (
	"context"
	"errors"

	"github.com/actu/newsroom/internal/core/access"
	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// handle decodes the payload into T before calling fn.
func handle[T any](fn func(ctx context.Context, req T) (any, error)) operation {
	return func(ctx context.Context, raw []byte) (any, error) {
		req, err := decodePayload[T](raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, req)
	}
}

// guarded runs the role check for op before decoding anything.
func guarded[T any](op access.Operation, fn func(ctx context.Context, p domain.Principal, req T) (any, error)) operation {
	return func(ctx context.Context, raw []byte) (any, error) {
		p, err := access.Authorize(ctx, op)
		if err != nil {
			return nil, err
		}
		req, err := decodePayload[T](raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, p, req)
	}
}

func (ep *Endpoint) operations() map[string]operation {
	return map[string]operation{
		"loginRequest":           handle(ep.login),
		"registerRequest":        handle(ep.register),
		"getCurrentUserRequest":  guarded(access.ReadCurrentUser, ep.currentUser),
		"logoutRequest":          guarded(access.Logout, ep.logout),
		"getAllUsersRequest":     guarded(access.ManageUsers, ep.listUsers),
		"getUserRequest":         guarded(access.ManageUsers, ep.getUser),
		"createUserRequest":      guarded(access.ManageUsers, ep.createUser),
		"updateUserRequest":      guarded(access.ManageUsers, ep.updateUser),
		"deleteUserRequest":      guarded(access.ManageUsers, ep.deleteUser),
		"getProfileRequest":      guarded(access.ReadProfile, ep.getProfile),
		"updateProfileRequest":   guarded(access.UpdateProfile, ep.updateProfile),
		"getAllTokensRequest":    guarded(access.ManageTokens, ep.listTokens),
		"generateTokenRequest":   guarded(access.ManageTokens, ep.generateToken),
		"deleteTokenRequest":     guarded(access.ManageTokens, ep.deleteToken),
		"getTokensByUserRequest": guarded(access.ManageTokens, ep.tokensByUser),
		"reactivateTokenRequest": guarded(access.ManageTokens, ep.reactivateToken),
		"revokeTokenRequest":     guarded(access.ManageTokens, ep.revokeToken),
	}
}

// --- Auth ---

func (ep *Endpoint) login(ctx context.Context, req loginRequest) (any, error) {
	result, err := ep.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return loginResponse{Token: result.Token.Value, User: toUser(result.Account)}, nil
}

func (ep *Endpoint) register(ctx context.Context, req registerRequest) (any, error) {
	_, err := ep.auth.Register(ctx, ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		return status("registerResponse", true, "User registered successfully"), nil
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return status("registerResponse", false, "Username or email already exists"), nil
	case errors.Is(err, domain.ErrInvalidInput):
		return status("registerResponse", false, err.Error()), nil
	default:
		return nil, err
	}
}

func (ep *Endpoint) currentUser(ctx context.Context, p domain.Principal, _ emptyRequest) (any, error) {
	account, err := ep.auth.CurrentUser(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	return userResponse{XMLName: responseName("getCurrentUserResponse"), User: toUser(account)}, nil
}

func (ep *Endpoint) logout(ctx context.Context, _ domain.Principal, _ emptyRequest) (any, error) {
	value, ok := authn.TokenFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := ep.auth.Logout(ctx, value); err != nil {
		return nil, err
	}
	return status("logoutResponse", true, "Logged out successfully"), nil
}

// --- Users ---

func (ep *Endpoint) listUsers(ctx context.Context, _ domain.Principal, _ emptyRequest) (any, error) {
	accounts, err := ep.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return usersResponse{Users: toUsers(accounts)}, nil
}

// getUser answers an unknown id with an empty response rather than a fault.
func (ep *Endpoint) getUser(ctx context.Context, _ domain.Principal, req idRequest) (any, error) {
	account, err := ep.users.Get(ctx, req.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return userResponse{XMLName: responseName("getUserResponse"), User: toUser(account)}, nil
}

func (ep *Endpoint) createUser(ctx context.Context, _ domain.Principal, req userRequest) (any, error) {
	role, err := fromWireRole(req.User.Role)
	if err != nil {
		return nil, err
	}
	account, err := ep.users.Create(ctx, ports.AccountInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}
	return userResponse{XMLName: responseName("createUserResponse"), User: toUser(account)}, nil
}

func (ep *Endpoint) updateUser(ctx context.Context, _ domain.Principal, req updateUserRequest) (any, error) {
	role, err := fromWireRole(req.User.Role)
	if err != nil {
		return nil, err
	}
	account, err := ep.users.Update(ctx, req.ID, ports.AccountInput{
		Username:       req.User.Username,
		Email:          req.User.Email,
		Password:       req.User.Password,
		ChangePassword: req.User.Password != "",
		Role:           role,
	})
	if err != nil {
		return nil, err
	}
	return userResponse{XMLName: responseName("updateUserResponse"), User: toUser(account)}, nil
}

func (ep *Endpoint) deleteUser(ctx context.Context, _ domain.Principal, req idRequest) (any, error) {
	err := ep.users.Delete(ctx, req.ID)
	switch {
	case err == nil:
		return status("deleteUserResponse", true, "User deleted"), nil
	case errors.Is(err, domain.ErrNotFound):
		return status("deleteUserResponse", false, "User not found"), nil
	default:
		return nil, err
	}
}

// --- Profile ---

func (ep *Endpoint) getProfile(ctx context.Context, p domain.Principal, _ emptyRequest) (any, error) {
	account, err := ep.users.Profile(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	return userResponse{XMLName: responseName("getProfileResponse"), User: toUser(account)}, nil
}

// updateProfile ignores any role in the payload.
func (ep *Endpoint) updateProfile(ctx context.Context, p domain.Principal, req userRequest) (any, error) {
	account, err := ep.users.UpdateProfile(ctx, p.AccountID, ports.ProfileInput{
		Username:       req.User.Username,
		Email:          req.User.Email,
		Password:       req.User.Password,
		ChangePassword: req.User.Password != "",
	})
	if err != nil {
		return nil, err
	}
	return userResponse{XMLName: responseName("updateProfileResponse"), User: toUser(account)}, nil
}

// --- Tokens ---

func (ep *Endpoint) listTokens(ctx context.Context, _ domain.Principal, _ emptyRequest) (any, error) {
	tokens, err := ep.tokens.List(ctx)
	if err != nil {
		return nil, err
	}
	return tokensResponse{XMLName: responseName("getAllTokensResponse"), Tokens: toTokens(tokens)}, nil
}

func (ep *Endpoint) generateToken(ctx context.Context, _ domain.Principal, req userIDRequest) (any, error) {
	tok, err := ep.tokens.Generate(ctx, req.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return tokenResponse{Token: toToken(tok)}, nil
}

func (ep *Endpoint) tokensByUser(ctx context.Context, _ domain.Principal, req userIDRequest) (any, error) {
	tokens, err := ep.tokens.ListForAccount(ctx, req.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return tokensResponse{XMLName: responseName("getTokensByUserResponse"), Tokens: toTokens(tokens)}, nil
}

func (ep *Endpoint) deleteToken(ctx context.Context, _ domain.Principal, req idRequest) (any, error) {
	return tokenStatus("deleteTokenResponse", "Token deleted", ep.tokens.Delete(ctx, req.ID))
}

func (ep *Endpoint) revokeToken(ctx context.Context, _ domain.Principal, req idRequest) (any, error) {
	return tokenStatus("revokeTokenResponse", "Token revoked", ep.tokens.Revoke(ctx, req.ID))
}

func (ep *Endpoint) reactivateToken(ctx context.Context, _ domain.Principal, req idRequest) (any, error) {
	_, err := ep.tokens.Reactivate(ctx, req.ID)
	return tokenStatus("reactivateTokenResponse", "Token reactivated", err)
}

func tokenStatus(local, done string, err error) (any, error) {
	switch {
	case err == nil:
		return status(local, true, done), nil
	case errors.Is(err, domain.ErrNotFound):
		return status(local, false, "Token not found"), nil
	default:
		return nil, err
	}
}
