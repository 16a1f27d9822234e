package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapInternalPreservesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := wrapInternal(cause)

	require.ErrorIs(t, wrapped, ErrInternal)
	require.True(t, strings.Contains(wrapped.Error(), "disk full"))
}

func TestInvalidRowErrorMessage(t *testing.T) {
	err := &InvalidRowError{RowNumber: 42, Reason: "unparseable date/time"}
	require.Equal(t, "ingest: row 42: unparseable date/time", err.Error())
}
