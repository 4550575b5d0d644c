package glyphwave

import (
	"errors"
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageType names a message crossing the UI/render boundary.
type MessageType string

const (
	MsgInit        MessageType = "init"        // UI → render, once, carries the canvas
	MsgUpdate      MessageType = "update"      // UI → render, partial config
	MsgStop        MessageType = "stop"        // UI → render
	MsgReady       MessageType = "ready"       // render → UI, surface is up
	MsgError       MessageType = "error"       // render → UI, setup or runtime failure
	MsgSceneUpdate MessageType = "sceneUpdate" // render → UI, scene changed
)

func (t MessageType) valid() bool {
	switch t {
	case MsgInit, MsgUpdate, MsgStop, MsgReady, MsgError, MsgSceneUpdate:
		return true
	}
	return false
}

// Message is the single envelope for every protocol message. Pointer fields
// of an update are present only when set.
type Message struct {
	Type MessageType `json:"type"`

	// init
	Canvas *OffscreenCanvas `json:"-"`

	// init, update
	PixelSize *float64 `json:"pixelSize,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Width     *int     `json:"width,omitempty"`
	Height    *int     `json:"height,omitempty"`

	// error
	Error string `json:"error,omitempty"`

	// sceneUpdate
	Scene    SceneName `json:"scene,omitempty"`
	Progress float64   `json:"progress,omitempty"`
	FPS      int       `json:"fps,omitempty"`
}

// SceneEvent is what the UI receives when the scene changes.
type SceneEvent struct {
	Scene    SceneName `json:"scene"`
	Progress float64   `json:"progress"`
	FPS      int       `json:"fps"`
}

// InitMessage transfers canvas to the render side with the mount parameters.
func InitMessage(canvas *OffscreenCanvas, pixelSize, speed float64) Message {
	w, h := canvas.Size()
	return Message{
		Type:      MsgInit,
		Canvas:    canvas,
		PixelSize: &pixelSize,
		Speed:     &speed,
		Width:     &w,
		Height:    &h,
	}
}

// UpdateOption sets one field of an update message.
type UpdateOption func(*Message)

// WithPixelSize sets the glyph cell size.
func WithPixelSize(v float64) UpdateOption {
	return func(m *Message) { m.PixelSize = &v }
}

// WithSpeed sets the time multiplier.
func WithSpeed(v float64) UpdateOption {
	return func(m *Message) { m.Speed = &v }
}

// WithSize sets the canvas size in device pixels.
func WithSize(w, h int) UpdateOption {
	return func(m *Message) {
		m.Width = &w
		m.Height = &h
	}
}

// UpdateMessage builds a partial update. Fields without an option are left
// absent and will not be touched by the receiver.
func UpdateMessage(opts ...UpdateOption) Message {
	m := Message{Type: MsgUpdate}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// StopMessage asks the render side to stop its loop.
func StopMessage() Message { return Message{Type: MsgStop} }

// ReadyMessage reports a working surface.
func ReadyMessage() Message { return Message{Type: MsgReady} }

// ErrorMessage wraps err for the UI side.
func ErrorMessage(err error) Message {
	return Message{Type: MsgError, Error: err.Error()}
}

// SceneUpdateMessage carries a scene event.
func SceneUpdateMessage(ev SceneEvent) Message {
	return Message{Type: MsgSceneUpdate, Scene: ev.Scene, Progress: ev.Progress, FPS: ev.FPS}
}

// Event extracts the scene event of a sceneUpdate message.
func (m Message) Event() SceneEvent {
	return SceneEvent{Scene: m.Scene, Progress: m.Progress, FPS: m.FPS}
}

// IsEmptyUpdate reports an update that carries no fields.
func (m Message) IsEmptyUpdate() bool {
	return m.Type == MsgUpdate && m.PixelSize == nil && m.Speed == nil && m.Width == nil && m.Height == nil
}

// Bounded returns a copy of an update with every present field clamped to
// the render bounds. Non-positive sizes and NaN values are dropped.
func (m Message) Bounded() Message {
	if v := m.PixelSize; v != nil {
		m.PixelSize = nil
		if *v > 0 {
			WithPixelSize(min(max(*v, MinPixelSize), MaxPixelSize))(&m)
		}
	}
	if v := m.Speed; v != nil {
		m.Speed = nil
		if !math.IsNaN(*v) {
			WithSpeed(min(max(*v, 0), MaxSpeed))(&m)
		}
	}
	m.Width = boundEdge(m.Width)
	m.Height = boundEdge(m.Height)
	return m
}

func boundEdge(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	e := min(*v, MaxCanvasEdge)
	return &e
}

var errCanvasOverWire = errors.New("glyphwave: init carries a canvas and cannot be encoded")

// MarshalMessage encodes m as JSON. Init messages are refused: a canvas is
// transferred, never serialised.
func MarshalMessage(m Message) ([]byte, error) {
	if m.Type == MsgInit {
		return nil, errCanvasOverWire
	}
	if !m.Type.valid() {
		return nil, fmt.Errorf("glyphwave: encode message: unknown type %q", m.Type)
	}
	return json.Marshal(m)
}

// UnmarshalMessage decodes a JSON message and checks its type.
func UnmarshalMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("glyphwave: decode message: %w", err)
	}
	if !m.Type.valid() {
		return Message{}, fmt.Errorf("glyphwave: decode message: unknown type %q", m.Type)
	}
	if m.Type == MsgInit {
		return Message{}, errCanvasOverWire
	}
	return m, nil
}
