package authcore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := E(KindCapability, "google sign-in is not supported on this platform")
	assert.Equal(t, KindCapability, KindOf(err))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindCapability, KindOf(wrapped))

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindTransientStore, "profile provisioning failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "profile provisioning failed: connection refused", err.Error())
}

func TestErrInvalidLoginIsAuthKind(t *testing.T) {
	assert.Equal(t, KindAuth, KindOf(ErrInvalidLogin))
	assert.Equal(t, "invalid username or password", ErrInvalidLogin.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "transient_store", KindTransientStore.String())
	assert.Equal(t, "capability", KindCapability.String())
	assert.Equal(t, "internal", KindInternal.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
