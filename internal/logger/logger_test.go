package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestBroadcastHandlerFeedsRingAndBus(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "debug", "json")

	ch, cancel := Subscribe()
	defer cancel()

	slog.Default().With("run_id", "r1").WithGroup("sheet").Info("sheet data loading", "current", 3, "err", errors.New("boom"))

	if !strings.Contains(buf.String(), "sheet data loading") {
		t.Fatalf("next handler did not receive record: %s", buf.String())
	}

	evts := Recent(1)
	if len(evts) != 1 || evts[0].Msg != "sheet data loading" {
		t.Fatalf("unexpected ring events: %+v", evts)
	}
	if evts[0].Attrs["run_id"] != "r1" {
		t.Fatalf("run_id attr missing: %+v", evts[0].Attrs)
	}
	grp, ok := evts[0].Attrs["sheet"].(map[string]any)
	if !ok || grp["current"] != int64(3) || grp["err"] != "boom" {
		t.Fatalf("group attrs wrong: %+v", evts[0].Attrs)
	}

	select {
	case msg := <-ch:
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("bus payload not json: %v", err)
		}
		if evt.Msg != "sheet data loading" {
			t.Fatalf("bus msg=%q", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("no bus message")
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := newRing(2)
	r.add(Event{Msg: "a"})
	r.add(Event{Msg: "b"})
	r.add(Event{Msg: "c"})
	got := r.recent(0)
	if len(got) != 2 || got[0].Msg != "b" || got[1].Msg != "c" {
		t.Fatalf("ring=%+v", got)
	}
	if one := r.recent(1); len(one) != 1 || one[0].Msg != "c" {
		t.Fatalf("recent(1)=%+v", one)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING") != slog.LevelWarn || parseLevel("") != slog.LevelInfo || parseLevel("debug") != slog.LevelDebug {
		t.Fatalf("parseLevel mismatch")
	}
}
