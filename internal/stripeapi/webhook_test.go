package stripeapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructEvent(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","amount_total":1999,"metadata":{"dealId":"deal-1"}}}}`)

	t.Run("valid signature", func(t *testing.T) {
		header := SignatureHeader(payload, secret, time.Now().Unix())

		event, err := ConstructEvent(payload, header, secret, DefaultTolerance)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, "checkout.session.completed", event.Type)

		session, err := SessionFromEvent(event)
		require.NoError(t, err)
		assert.Equal(t, "cs_123", session.ID)
		assert.Equal(t, int64(1999), session.AmountTotal)
		assert.Equal(t, "deal-1", session.Metadata["dealId"])
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignatureHeader(payload, "whsec_other", time.Now().Unix())

		_, err := ConstructEvent(payload, header, secret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := SignatureHeader(payload, secret, time.Now().Unix())
		tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","amount_total":1,"metadata":{"dealId":"deal-1"}}}}`)

		_, err := ConstructEvent(tampered, header, secret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("timestamp outside tolerance", func(t *testing.T) {
		header := SignatureHeader(payload, secret, time.Now().Add(-10*time.Minute).Unix())

		_, err := ConstructEvent(payload, header, secret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrExpiredSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := ConstructEvent(payload, "", secret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("garbage header", func(t *testing.T) {
		_, err := ConstructEvent(payload, "t=abc,v1=zzz", secret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "dollars and cents", value: "19.99", want: 1999},
		{name: "whole dollars", value: "20", want: 2000},
		{name: "not a number", value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
