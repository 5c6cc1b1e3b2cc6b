package gcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "forbidden", err: &googleapi.Error{Code: 403}, want: false},
		{name: "precondition failed", err: fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 412}), want: false},
		{name: "rate limited", err: &googleapi.Error{Code: 429}, want: true},
		{name: "request timeout", err: &googleapi.Error{Code: 408}, want: true},
		{name: "server error", err: &googleapi.Error{Code: 503}, want: true},
		{name: "canceled", err: fmt.Errorf("io.Copy to GCS failed: %w", context.Canceled), want: false},
		{name: "network", err: errors.New("connection reset by peer"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("PITCHLENS_TEST_INT", "40")
	n, err := GetEnvInt("PITCHLENS_TEST_INT", 15)
	require.NoError(t, err)
	assert.Equal(t, 40, n)

	n, err = GetEnvInt("PITCHLENS_TEST_UNSET", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	t.Setenv("PITCHLENS_TEST_INT", "fifteen")
	_, err = GetEnvInt("PITCHLENS_TEST_INT", 15)
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PITCHLENS_TEST_STR", "deals")
	assert.Equal(t, "deals", GetEnv("PITCHLENS_TEST_STR", "x"))
	assert.Equal(t, "x", GetEnv("PITCHLENS_TEST_STR_UNSET", "x"))
}
