package errx_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/stretchr/testify/assert"
)

var testRegistry = errx.NewRegistry("TEST")

var (
	codeBroken = testRegistry.Register("BROKEN", errx.TypeValidation, http.StatusBadRequest, "Broken input")
	codeOther  = testRegistry.Register("OTHER", errx.TypeAuthorization, http.StatusUnauthorized, "Other")
)

func TestRegistry_PrefixesCodes(t *testing.T) {
	err := testRegistry.New(codeBroken)

	assert.Equal(t, "TEST_BROKEN", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "[TEST_BROKEN] Broken input", err.Error())
}

func TestIsCode_FollowsWrapChain(t *testing.T) {
	base := testRegistry.New(codeBroken)
	wrapped := fmt.Errorf("outer: %w", errx.Wrap(base, "context", errx.TypeValidation))

	assert.True(t, errx.IsCode(wrapped, codeBroken))
	assert.False(t, errx.IsCode(wrapped, codeOther))
	assert.False(t, errx.IsCode(errors.New("plain"), codeBroken))
	assert.False(t, errx.IsCode(nil, codeBroken))
}

func TestToHTTPResponse_HidesInternalErrors(t *testing.T) {
	internal := errx.Wrap(errors.New("pq: connection refused"), "failed to claim", errx.TypeInternal).
		WithDetail("code", "INV1")

	resp := errx.ToHTTPResponse(internal)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, resp.Message, "pq")
	assert.Empty(t, resp.Details)

	resp = errx.ToHTTPResponse(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestToHTTPResponse_KeepsTypedErrors(t *testing.T) {
	resp := errx.ToHTTPResponse(testRegistry.New(codeOther).WithDetail("hint", "x"))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TEST_OTHER", resp.Code)
	assert.Equal(t, "x", resp.Details["hint"])
}
