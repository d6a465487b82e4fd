package winloop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventLoopClosedError(t *testing.T) {
	err := error(&EventLoopClosedError[string]{Event: "payload"})
	assert.Equal(t, "Tried to wake up a closed `EventLoop`", err.Error())
	assert.ErrorIs(t, err, ErrLoopClosed)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), &EventLoopClosedError[string]{})

	var target *EventLoopClosedError[string]
	if assert.True(t, errors.As(err, &target)) {
		assert.Equal(t, "payload", target.Event)
	}
	var other *EventLoopClosedError[int]
	assert.False(t, errors.As(err, &other))
}

func TestBadIconError_Is(t *testing.T) {
	err := error(&BadIconError{Kind: BadIconDimensionsZero})
	assert.ErrorIs(t, err, &BadIconError{})
	assert.ErrorIs(t, err, &BadIconError{Kind: BadIconDimensionsZero})
	assert.NotErrorIs(t, err, &BadIconError{Kind: BadIconDimensionsVsPixelCount})
}

func TestBackendError(t *testing.T) {
	err := &BackendError{Name: "x11", Err: ErrDisplayDisconnected}
	assert.Equal(t, "winloop: backend x11: winloop: display connection lost", err.Error())
	assert.ErrorIs(t, err, ErrDisplayDisconnected)
}
