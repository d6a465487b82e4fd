package winloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventName(t *testing.T) {
	for _, tc := range [...]struct {
		ev   Event
		want string
	}{
		{NewEvents{}, "NewEvents"},
		{WindowEvent{Event: CloseRequested{}}, "WindowEvent/CloseRequested"},
		{WindowEvent{Event: Resized{}}, "WindowEvent/Resized"},
		{WindowEvent{}, "WindowEvent"},
		{DeviceEvent{Event: MouseMotion{}}, "DeviceEvent"},
		{UserEvent[int]{Payload: 1}, "UserEvent"},
		{AboutToWait{}, "AboutToWait"},
		{LoopDestroyed{}, "LoopDestroyed"},
		{Suspended{}, "Suspended"},
		{Resumed{}, "Resumed"},
	} {
		assert.Equal(t, tc.want, eventName(tc.ev))
	}
}

func TestKeyCode_String(t *testing.T) {
	assert.Equal(t, "Unidentified", KeyUnidentified.String())
	assert.Equal(t, "A", KeyA.String())
	assert.Equal(t, "9", Key9.String())
	assert.Equal(t, "F12", KeyF12.String())
	assert.Equal(t, "KeyCode(1000)", KeyCode(1000).String())
}

func TestMouseButton_String(t *testing.T) {
	assert.Equal(t, "Left", MouseButtonLeft.String())
	assert.Equal(t, "Other(2)", (MouseButtonOther + 2).String())
}

func TestStartCauseKind_String(t *testing.T) {
	assert.Equal(t, "Init", CauseInit.String())
	assert.Equal(t, "ResumeTimeReached", CauseResumeTimeReached.String())
}
