package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gartstein/staffdir/internal/directory/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTokenIssuer(t *testing.T) {
	issuer := &tokenIssuer{secret: "s3cret", ttl: time.Hour, logger: zaptest.NewLogger(t)}

	rec := httptest.NewRecorder()
	issuer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?user=ops", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := auth.ValidateToken(resp.Token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
}
