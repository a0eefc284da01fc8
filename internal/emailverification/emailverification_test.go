package emailverification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndRedeemToken(t *testing.T) {
	service := NewService()

	token, err := service.CreateToken(context.Background(), "user-1", "a@b.com", nil)
	require.NoError(t, err)
	assert.True(t, token.OK)
	require.NotEmpty(t, token.Token)

	assert.False(t, service.IsVerified("user-1", "a@b.com"))

	require.NoError(t, service.VerifyUsingToken(context.Background(), token.Token, nil))
	assert.True(t, service.IsVerified("user-1", "a@b.com"))
}

func TestCreateTokenAlreadyVerified(t *testing.T) {
	service := NewService()

	token, err := service.CreateToken(context.Background(), "user-1", "a@b.com", nil)
	require.NoError(t, err)
	require.NoError(t, service.VerifyUsingToken(context.Background(), token.Token, nil))

	again, err := service.CreateToken(context.Background(), "user-1", "a@b.com", nil)
	require.NoError(t, err)
	assert.False(t, again.OK)
	assert.Empty(t, again.Token)
}

func TestVerifyUnknownToken(t *testing.T) {
	service := NewService()

	err := service.VerifyUsingToken(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIsSingleUse(t *testing.T) {
	service := NewService()

	token, err := service.CreateToken(context.Background(), "user-1", "a@b.com", nil)
	require.NoError(t, err)
	require.NoError(t, service.VerifyUsingToken(context.Background(), token.Token, nil))

	err = service.VerifyUsingToken(context.Background(), token.Token, nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
