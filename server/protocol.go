package main

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

// Client -> Server message types
const (
	MsgStart   = "start"   // desktop starts a run
	MsgInput   = "input"   // intent from keyboard or paired phone
	MsgControl = "control" // phone controller attach
	MsgLeave   = "leave"
)

// Server -> Client message types
const (
	MsgStarted   = "started"
	MsgEvents    = "events"     // gameplay events since the previous frame
	MsgEnded     = "ended"      // run summary
	MsgError     = "error"
	MsgControlOK = "control_ok" // controller attach confirmed
	MsgCtrlOn    = "ctrl_on"    // notify desktop: controller attached
	MsgCtrlOff   = "ctrl_off"   // notify desktop: controller detached
)

// Binary input frame: [binaryInputMarker, flags]
const (
	binaryInputMarker = 0x01
	binaryInputLen    = 2
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// StartMsg is sent by the desktop to begin a run
type StartMsg struct {
	Mode string `json:"mode"` // "arcade" or "classic"; empty uses the server default
}

// StartedMsg confirms a new run
type StartedMsg struct {
	SID     string `json:"sid"`
	Mode    string `json:"mode"`
	PairURL string `json:"pairUrl"`
}

// ControlMsg is sent by a phone controller to attach to a run
type ControlMsg struct {
	Token string `json:"token"`
}

// ControlOKMsg confirms a controller attach
type ControlOKMsg struct {
	SID string `json:"sid"`
}

// EndedMsg summarizes a finished run
type EndedMsg struct {
	SID           string  `json:"sid"`
	Score         int     `json:"score"`
	Distance      float64 `json:"distance"`
	Duration      float64 `json:"duration"`
	CarsDestroyed int     `json:"cars"`
	MissilesFired int     `json:"missiles"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// Frame is the binary state broadcast: the latest snapshot plus every
// obstacle that entered or left the active set since the previous frame
type Frame struct {
	Snapshot sim.Snapshot `msgpack:"s"`
	Changes  sim.Changes  `msgpack:"c"`
}

// EncodeFrame marshals a frame with msgpack
func EncodeFrame(f Frame) ([]byte, error) {
	return msgpack.Marshal(&f)
}

// DecodeFrame unmarshals a binary state frame
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	return f, err
}
