package glyphwave

import (
	"errors"
	"strings"
	"testing"
)

func TestUpdateMessageOmitsUnsetFields(t *testing.T) {
	data, err := MarshalMessage(UpdateMessage(WithSpeed(2)))
	if err != nil {
		t.Fatalf("MarshalMessage: %v", err)
	}
	got := string(data)
	if got != `{"type":"update","speed":2}` {
		t.Errorf("encoded = %s", got)
	}
}

func TestDecodeUpdate(t *testing.T) {
	m, err := UnmarshalMessage([]byte(`{"type":"update","pixelSize":80}`))
	if err != nil {
		t.Fatalf("UnmarshalMessage: %v", err)
	}
	if m.Type != MsgUpdate {
		t.Errorf("Type = %q, want update", m.Type)
	}
	if m.PixelSize == nil || *m.PixelSize != 80 {
		t.Errorf("PixelSize = %v, want 80", m.PixelSize)
	}
	if m.Speed != nil || m.Width != nil || m.Height != nil {
		t.Error("absent fields decoded as present")
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	if _, err := UnmarshalMessage([]byte(`{"type":"explode"}`)); err == nil {
		t.Error("unknown type accepted")
	}
	if _, err := UnmarshalMessage([]byte(`{"type":`)); err == nil {
		t.Error("truncated JSON accepted")
	}
}

func TestInitNeverCrossesTheWire(t *testing.T) {
	c := NewOffscreenCanvas(4, 4)
	if _, err := MarshalMessage(InitMessage(c, 12, 1)); !errors.Is(err, errCanvasOverWire) {
		t.Errorf("marshal init err = %v", err)
	}
	if _, err := UnmarshalMessage([]byte(`{"type":"init","speed":1}`)); !errors.Is(err, errCanvasOverWire) {
		t.Errorf("unmarshal init err = %v", err)
	}
}

func TestInitMessageCarriesCanvasSize(t *testing.T) {
	c := NewOffscreenCanvas(320, 200)
	m := InitMessage(c, 10, 1.5)
	if m.Canvas != c {
		t.Error("canvas not carried")
	}
	if *m.Width != 320 || *m.Height != 200 || *m.PixelSize != 10 || *m.Speed != 1.5 {
		t.Errorf("init = %d %d %v %v", *m.Width, *m.Height, *m.PixelSize, *m.Speed)
	}
}

func TestSceneUpdateRoundTrip(t *testing.T) {
	ev := SceneEvent{Scene: SceneCell, Progress: 0.25, FPS: 59}
	data, err := MarshalMessage(SceneUpdateMessage(ev))
	if err != nil {
		t.Fatalf("MarshalMessage: %v", err)
	}
	if !strings.Contains(string(data), `"type":"sceneUpdate"`) {
		t.Errorf("encoded = %s", data)
	}
	m, err := UnmarshalMessage(data)
	if err != nil {
		t.Fatalf("UnmarshalMessage: %v", err)
	}
	if m.Event() != ev {
		t.Errorf("Event = %+v, want %+v", m.Event(), ev)
	}
}

func TestErrorMessage(t *testing.T) {
	m := ErrorMessage(errors.New("context lost"))
	if m.Type != MsgError || m.Error != "context lost" {
		t.Errorf("ErrorMessage = %+v", m)
	}
}

func TestIsEmptyUpdate(t *testing.T) {
	if !UpdateMessage().IsEmptyUpdate() {
		t.Error("bare update not empty")
	}
	if UpdateMessage(WithSize(1, 1)).IsEmptyUpdate() {
		t.Error("sized update reported empty")
	}
	if StopMessage().IsEmptyUpdate() {
		t.Error("stop reported as empty update")
	}
}
