package v4l2

import (
	"errors"
	"testing"
)

func probeTable(table map[string]struct {
	name string
	ok   bool
	err  error
}) probeFunc {
	return func(path string) (string, bool, error) {
		r := table[path]
		return r.name, r.ok, r.err
	}
}

func TestEmptyGlobReturnsFallback(t *testing.T) {
	got := findDevices(nil, probeTable(nil))
	if len(got) != 2 {
		t.Fatalf("got %d devices, want fallback pair", len(got))
	}
	if got[0].Path != "/dev/video0" || got[1].Path != "/dev/video1" {
		t.Fatalf("unexpected fallback: %+v", got)
	}
}

func TestMetadataNodesFiltered(t *testing.T) {
	table := probeTable(map[string]struct {
		name string
		ok   bool
		err  error
	}{
		"/dev/video0": {name: "HD Webcam: HD Webcam", ok: true},
		"/dev/video1": {name: "HD Webcam", ok: false}, // metadata node
	})
	got := findDevices([]string{"/dev/video1", "/dev/video0"}, table)
	if len(got) != 1 {
		t.Fatalf("got %+v, want just video0", got)
	}
	if got[0].Path != "/dev/video0" {
		t.Fatalf("got %q, want /dev/video0", got[0].Path)
	}
	if got[0].Name != "HD Webcam" {
		t.Fatalf("card name not cleaned: %q", got[0].Name)
	}
}

func TestQueryFailureKeepsDevice(t *testing.T) {
	table := probeTable(map[string]struct {
		name string
		ok   bool
		err  error
	}{
		"/dev/video0": {err: errors.New("permission denied")},
		"/dev/video2": {name: "Capture Card", ok: true},
	})
	got := findDevices([]string{"/dev/video0", "/dev/video2"}, table)
	if len(got) != 2 {
		t.Fatalf("fail-open violated: %+v", got)
	}
	if got[0].Name != "video0" {
		t.Fatalf("unqueryable device should fall back to path name, got %q", got[0].Name)
	}
}

func TestFilterToEmptyReturnsUnfiltered(t *testing.T) {
	table := probeTable(map[string]struct {
		name string
		ok   bool
		err  error
	}{
		"/dev/video0": {ok: false},
		"/dev/video1": {ok: false},
	})
	got := findDevices([]string{"/dev/video0", "/dev/video1"}, table)
	if len(got) != 2 {
		t.Fatalf("got %+v, want unfiltered set", got)
	}
}

func TestOrderingLexicographic(t *testing.T) {
	table := probeTable(map[string]struct {
		name string
		ok   bool
		err  error
	}{
		"/dev/video0":  {name: "a", ok: true},
		"/dev/video10": {name: "b", ok: true},
		"/dev/video2":  {name: "c", ok: true},
	})
	got := findDevices([]string{"/dev/video2", "/dev/video10", "/dev/video0"}, table)
	want := []string{"/dev/video0", "/dev/video10", "/dev/video2"}
	for i, p := range want {
		if got[i].Path != p {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Path, p)
		}
	}
}

func TestDisplayNameTrimsNulPadding(t *testing.T) {
	if got := displayName("USB Video\x00\x00\x00", "/dev/video0"); got != "USB Video" {
		t.Fatalf("got %q", got)
	}
}
