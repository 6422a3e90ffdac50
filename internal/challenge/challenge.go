// Package challenge implements multi-gesture liveness sessions: random
// challenge sequence generation, ordered completion tracking and batch
// validation of collected challenge frames.
package challenge

// Type identifies a liveness challenge gesture.
type Type string

const (
	TypeSmile     Type = "smile"
	TypeBlink     Type = "blink"
	TypeTurnLeft  Type = "turn_left"
	TypeTurnRight Type = "turn_right"
)

// AllTypes lists every challenge type in declaration order.
func AllTypes() []Type {
	return []Type{TypeSmile, TypeBlink, TypeTurnLeft, TypeTurnRight}
}

// Valid reports whether t is a known challenge type
func (t Type) Valid() bool {
	switch t {
	case TypeSmile, TypeBlink, TypeTurnLeft, TypeTurnRight:
		return true
	}
	return false
}

// Instruction is the frontend-facing description of a challenge.
type Instruction struct {
	Title          string `json:"title"`
	Instruction    string `json:"instruction"`
	Icon           string `json:"icon"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Instructions maps each challenge type to its display instruction.
var Instructions = map[Type]Instruction{
	TypeSmile: {
		Title:          "Smile",
		Instruction:    "Please smile!",
		Icon:           "smile",
		TimeoutSeconds: 10,
	},
	TypeBlink: {
		Title:          "Blink",
		Instruction:    "Please blink your eyes",
		Icon:           "eye",
		TimeoutSeconds: 8,
	},
	TypeTurnLeft: {
		Title:          "Turn Left",
		Instruction:    "Turn your head to the left",
		Icon:           "arrow-left",
		TimeoutSeconds: 8,
	},
	TypeTurnRight: {
		Title:          "Turn Right",
		Instruction:    "Turn your head to the right",
		Icon:           "arrow-right",
		TimeoutSeconds: 8,
	},
}
