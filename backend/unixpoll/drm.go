package unixpoll

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/fnv"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joeycumines/go-winloop"
	"golang.org/x/exp/slices"
)

const defaultDRMRoot = "/sys/class/drm"

// scanDRM lists the connected DRM connectors under fsys (a view of
// /sys/class/drm), as monitors laid out left to right, in connector order.
// The first listed mode of each connector is its current size.
func scanDRM(fsys fs.FS) ([]winloop.MonitorInfo, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("unixpoll: read drm connectors: %w", err)
	}
	var (
		monitors []winloop.MonitorInfo
		x        int32
	)
	for _, entry := range entries {
		connector := entry.Name()
		card, name, ok := strings.Cut(connector, "-")
		if !ok || !strings.HasPrefix(card, "card") {
			continue
		}
		status, err := fs.ReadFile(fsys, connector+"/status")
		if err != nil || string(bytes.TrimSpace(status)) != "connected" {
			continue
		}
		modes, err := fs.ReadFile(fsys, connector+"/modes")
		if err != nil {
			continue
		}
		info := winloop.MonitorInfo{
			Name:        name,
			ID:          connectorID(connector),
			VideoModes:  parseModes(modes),
			X:           x,
			ScaleFactor: 1,
		}
		if len(info.VideoModes) != 0 {
			info.Size = info.VideoModes[0].Size
		}
		x += int32(info.Size.Width)
		monitors = append(monitors, info)
	}
	return monitors, nil
}

// parseModes parses a connector's modes file, e.g. "1920x1080\n1280x720\n",
// dropping duplicates and malformed lines. Interlaced modes are suffixed
// with "i", which is ignored.
func parseModes(b []byte) []winloop.VideoModeInfo {
	var modes []winloop.VideoModeInfo
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		w, h, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "x")
		if !ok {
			continue
		}
		h = strings.TrimSuffix(h, "i")
		width, err1 := strconv.ParseUint(w, 10, 32)
		height, err2 := strconv.ParseUint(h, 10, 32)
		if err1 != nil || err2 != nil || width == 0 || height == 0 {
			continue
		}
		mode := winloop.VideoModeInfo{
			Size:     winloop.PhysicalSize{Width: uint32(width), Height: uint32(height)},
			BitDepth: 32,
		}
		if !slices.Contains(modes, mode) {
			modes = append(modes, mode)
		}
	}
	return modes
}

// connectorID is stable across rescans, as connector names are.
func connectorID(connector string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(connector))
	return h.Sum64()
}
