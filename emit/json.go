package emit

import (
	"encoding/json"

	"github.com/db47h/ways/internal/table"
)

// jsonModel mirrors table.Model's fields with JSON tags; table.Model
// itself stays free of encoding concerns (internal/table is the
// materializer's package, not a serialization format).
type jsonModel struct {
	CharsetSize     int                `json:"charsetSize"`
	ClassCount      int                `json:"classCount"`
	StateCount      int                `json:"stateCount"`
	InitialStateID  int                `json:"initialStateId"`
	ClassMap        []byte             `json:"classMap"`
	Tokens          []string           `json:"tokens,omitempty"`
	FailureMessages []string           `json:"failureMessages,omitempty"`
	Transitions     [][]jsonTransition `json:"transitions"`
}

type jsonTransition struct {
	NextState int `json:"nextState"`
	Action    int `json:"action"`
	Mode      int `json:"mode"`
	Arg       int `json:"arg"`
}

// JSON renders m per the language-agnostic output schema of spec.md
// section 6.
func JSON(m *table.Model) ([]byte, error) {
	jm := jsonModel{
		CharsetSize:     m.CharsetSize,
		ClassCount:      m.ClassCount,
		StateCount:      m.StateCount,
		InitialStateID:  m.InitialStateID,
		ClassMap:        append([]byte(nil), m.ClassMap[:]...),
		Tokens:          m.Tokens,
		FailureMessages: m.FailureMessages,
	}
	jm.Transitions = make([][]jsonTransition, len(m.Transitions))
	for i, row := range m.Transitions {
		jr := make([]jsonTransition, len(row))
		for j, t := range row {
			jr[j] = jsonTransition{NextState: t.NextState, Action: int(t.Action), Mode: int(t.Mode), Arg: t.Arg}
		}
		jm.Transitions[i] = jr
	}

	return json.MarshalIndent(jm, "", "  ")
}
