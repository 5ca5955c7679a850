package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	t.Run("MasksFieldsAndAddsCorrelationID", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, "storefront", "info", nil, []string{"code", "Password"}))
		ctx := SetCorrelationID(context.Background(), "cid-1")

		// Act
		logger.With("phone_number", "+989123456789").InfoContext(ctx, "otp created",
			"code", "48213",
			"payload", map[string]any{"password": "secret", "email": "a@b.c"},
		)

		// Assert
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "***", got["code"])
		assert.Equal(t, map[string]any{"password": "***", "email": "a@b.c"}, got["payload"])
		assert.Equal(t, "+989123456789", got["phone_number"])
		assert.Equal(t, "cid-1", got["_cID"])
		assert.Equal(t, "storefront", got["service"])
		assert.Equal(t, "INFO", got["severity"])
		assert.Contains(t, got, "ts")
	})

	t.Run("MasksPreboundAttrsAndJSONStrings", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, "storefront", "debug", nil, []string{"code"}))

		// Act
		logger.With("code", "48213").Debug("otp event", "body", `{"otp_uuid":"u-1","code":"48213"}`)

		// Assert
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "***", got["code"])
		assert.JSONEq(t, `{"otp_uuid":"u-1","code":"***"}`, got["body"].(string))
		assert.NotContains(t, buf.String(), "48213")
	})

	t.Run("RespectsLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, "storefront", "warn", nil, nil))

		logger.Info("dropped")
		assert.Zero(t, buf.Len())

		logger.Warn("kept")
		assert.NotZero(t, buf.Len())
	})
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "x", GetCorrelationID(SetCorrelationID(context.Background(), "x")))
}
