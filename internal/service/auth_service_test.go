package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/pkg/api"
)

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		AvatarURL:   "avatar/alice.png",
		Password:    "password123",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Msg.Token)
	assert.Equal(t, "alice@example.com", reg.Msg.User.Email)
	assert.Equal(t, "avatar/alice.png", reg.Msg.User.AvatarURL)

	claims, err := env.jwt.Validate(reg.Msg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Msg.User.ID, claims.UserID())

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	assert.Equal(t, reg.Msg.User.ID, login.Msg.User.ID)

	me, err := env.auth.GetCurrentUser(ctx, withToken(login.Msg.Token, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Msg.User.DisplayName)
}

func TestRegister_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "password123",
	}))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "BOB@example.com", DisplayName: "Bob 2", Password: "password123"}, connect.CodeAlreadyExists},
		{"weak password", &api.RegisterRequest{Email: "carol@example.com", DisplayName: "Carol", Password: "short"}, connect.CodeInvalidArgument},
		{"bad email", &api.RegisterRequest{Email: "not-an-email", DisplayName: "Carol", Password: "password123"}, connect.CodeInvalidArgument},
		{"no nickname", &api.RegisterRequest{Email: "carol@example.com", DisplayName: "  ", Password: "password123"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, connect.NewRequest(tt.req))
			assertCode(t, tt.code, err)
		})
	}
}

func TestLogin_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "password123",
	}))
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "bob@example.com", Password: "wrong-password"}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "password123"}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "bob@example.com"}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestGetCurrentUser_RequiresToken(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.auth.GetCurrentUser(context.Background(), connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.GetCurrentUser(context.Background(), withToken("garbage", &api.GetCurrentUserRequest{}))
	assertCode(t, connect.CodeUnauthenticated, err)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "password123",
	}))
	require.NoError(t, err)
	token := reg.Msg.Token

	name := "  Bobby "
	chat := int64(424242)
	resp, err := env.auth.UpdateProfile(ctx, withToken(token, &api.UpdateProfileRequest{
		DisplayName:    &name,
		TelegramChatID: &chat,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Bobby", resp.Msg.User.DisplayName)
	assert.Equal(t, chat, resp.Msg.User.TelegramChatID)

	stored, err := env.store.GetUserByID(ctx, reg.Msg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", stored.DisplayName)
	assert.Equal(t, chat, stored.TelegramChatID)
	assert.Empty(t, stored.AvatarURL)

	empty := ""
	_, err = env.auth.UpdateProfile(ctx, withToken(token, &api.UpdateProfileRequest{DisplayName: &empty}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.auth.UpdateProfile(ctx, connect.NewRequest(&api.UpdateProfileRequest{DisplayName: &name}))
	assertCode(t, connect.CodeUnauthenticated, err)
}
