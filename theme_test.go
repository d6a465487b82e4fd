package winloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceEventFilter_defaultIsUnfocused(t *testing.T) {
	var f DeviceEventFilter
	assert.Equal(t, FilterUnfocused, f)
	assert.Equal(t, "Unfocused", f.String())
}

func TestProgressBarState_Normalized(t *testing.T) {
	over := uint64(250)
	state := ProgressNormal
	p := ProgressBarState{State: &state, Progress: &over}.Normalized()
	if assert.NotNil(t, p.Progress) {
		assert.Equal(t, uint64(100), *p.Progress)
	}
	assert.Equal(t, uint64(250), over)
	assert.Nil(t, ProgressBarState{}.Normalized().Progress)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Dark", ThemeDark.String())
	assert.Equal(t, "Theme(9)", Theme(9).String())
	assert.Equal(t, "Paused", ProgressPaused.String())
	assert.Equal(t, "Never", FilterNever.String())
}
