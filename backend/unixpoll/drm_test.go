package unixpoll

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-winloop"
)

func TestScanDRM(t *testing.T) {
	fsys := fstest.MapFS{
		"card0-HDMI-A-1/status": {Data: []byte("connected\n")},
		"card0-HDMI-A-1/modes":  {Data: []byte("1920x1080\n1280x720\n1920x1080\n720x480i\n")},
		"card0-DP-1/status":     {Data: []byte("disconnected\n")},
		"card0-DP-1/modes":      {Data: []byte("")},
		"card1-eDP-1/status":    {Data: []byte("connected\n")},
		"card1-eDP-1/modes":     {Data: []byte("2560x1600\nbogus\n0x10\n")},
		"card0/dev":             {Data: []byte("226:0\n")},
		"version":               {Data: []byte("drm 1.1.0\n")},
	}
	monitors, err := scanDRM(fsys)
	if err != nil {
		t.Fatal(err)
	}
	size := func(w, h uint32) winloop.VideoModeInfo {
		return winloop.VideoModeInfo{Size: winloop.PhysicalSize{Width: w, Height: h}, BitDepth: 32}
	}
	want := []winloop.MonitorInfo{
		{
			Name:        "HDMI-A-1",
			ID:          connectorID("card0-HDMI-A-1"),
			VideoModes:  []winloop.VideoModeInfo{size(1920, 1080), size(1280, 720), size(720, 480)},
			Size:        winloop.PhysicalSize{Width: 1920, Height: 1080},
			ScaleFactor: 1,
		},
		{
			Name:        "eDP-1",
			ID:          connectorID("card1-eDP-1"),
			VideoModes:  []winloop.VideoModeInfo{size(2560, 1600)},
			Size:        winloop.PhysicalSize{Width: 2560, Height: 1600},
			X:           1920,
			ScaleFactor: 1,
		},
	}
	if diff := cmp.Diff(want, monitors); diff != "" {
		t.Errorf("unexpected monitors (-want +got):\n%s", diff)
	}
}

func TestScanDRM_empty(t *testing.T) {
	monitors, err := scanDRM(fstest.MapFS{})
	if err != nil {
		t.Fatal(err)
	}
	if len(monitors) != 0 {
		t.Fatalf("expected no monitors, got %v", monitors)
	}
}

func TestConnectorID_stable(t *testing.T) {
	if connectorID("card0-HDMI-A-1") != connectorID("card0-HDMI-A-1") {
		t.Fatal("connector ids differ")
	}
	if connectorID("card0-HDMI-A-1") == connectorID("card0-HDMI-A-2") {
		t.Fatal("connector ids collide")
	}
}
