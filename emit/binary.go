package emit

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/db47h/ways/internal/table"
)

// binaryModel is a thin encoding.BinaryMarshaler/Unmarshaler wrapper
// around table.Model, so it can be handed to rezi.EncBinary/DecBinary the
// same way tunaq's sqlite DAO hands rezi a game-state value before
// storing it as a blob column.
type binaryModel struct {
	m *table.Model
}

func (b binaryModel) MarshalBinary() ([]byte, error) {
	var out []byte

	for _, enc := range []func() ([]byte, error){
		func() ([]byte, error) { return rezi.Enc(b.m.CharsetSize) },
		func() ([]byte, error) { return rezi.Enc(b.m.ClassCount) },
		func() ([]byte, error) { return rezi.Enc(b.m.StateCount) },
		func() ([]byte, error) { return rezi.Enc(b.m.InitialStateID) },
		func() ([]byte, error) { return rezi.Enc(b.m.ClassMap[:]) },
		func() ([]byte, error) { return rezi.Enc(b.m.Tokens) },
		func() ([]byte, error) { return rezi.Enc(b.m.FailureMessages) },
		func() ([]byte, error) { return rezi.Enc(encodeTransitions(b.m.Transitions)) },
	} {
		bs, err := enc()
		if err != nil {
			return nil, fmt.Errorf("ways: encoding model: %w", err)
		}
		out = append(out, bs...)
	}

	return out, nil
}

func (b *binaryModel) UnmarshalBinary(data []byte) error {
	m := &table.Model{}
	rest := data

	decode := func(v interface{}) error {
		n, err := rezi.Dec(rest, v)
		if err != nil {
			return err
		}
		rest = rest[n:]
		return nil
	}

	if err := decode(&m.CharsetSize); err != nil {
		return fmt.Errorf("ways: decoding model charsetSize: %w", err)
	}
	if err := decode(&m.ClassCount); err != nil {
		return fmt.Errorf("ways: decoding model classCount: %w", err)
	}
	if err := decode(&m.StateCount); err != nil {
		return fmt.Errorf("ways: decoding model stateCount: %w", err)
	}
	if err := decode(&m.InitialStateID); err != nil {
		return fmt.Errorf("ways: decoding model initialStateId: %w", err)
	}

	var classMap []byte
	if err := decode(&classMap); err != nil {
		return fmt.Errorf("ways: decoding model classMap: %w", err)
	}
	copy(m.ClassMap[:], classMap)

	if err := decode(&m.Tokens); err != nil {
		return fmt.Errorf("ways: decoding model tokens: %w", err)
	}
	if err := decode(&m.FailureMessages); err != nil {
		return fmt.Errorf("ways: decoding model failureMessages: %w", err)
	}

	var flat []int
	if err := decode(&flat); err != nil {
		return fmt.Errorf("ways: decoding model transitions: %w", err)
	}
	m.Transitions = decodeTransitions(flat, m.StateCount, m.ClassCount)

	b.m = m
	return nil
}

// encodeTransitions/decodeTransitions flatten the state x class matrix of
// Transition structs to a plain []int (NextState, Action, Mode, Arg per
// cell, in row-major order) since rezi encodes REZI-primitive types and
// slices of them directly without needing a reflection-based struct
// codec for Transition itself.
func encodeTransitions(rows [][]table.Transition) []int {
	var flat []int
	for _, row := range rows {
		for _, t := range row {
			flat = append(flat, t.NextState, int(t.Action), int(t.Mode), t.Arg)
		}
	}
	return flat
}

func decodeTransitions(flat []int, stateCount, classCount int) [][]table.Transition {
	rows := make([][]table.Transition, stateCount)
	i := 0
	for s := 0; s < stateCount; s++ {
		row := make([]table.Transition, classCount)
		for c := 0; c < classCount; c++ {
			row[c] = table.Transition{
				NextState: flat[i],
				Action:    table.Action(flat[i+1]),
				Mode:      table.Mode(flat[i+2]),
				Arg:       flat[i+3],
			}
			i += 4
		}
		rows[s] = row
	}
	return rows
}

// Binary renders m as a compact REZI-encoded binary blob.
func Binary(m *table.Model) ([]byte, error) {
	return rezi.EncBinary(binaryModel{m: m})
}

// DecodeBinary reverses Binary.
func DecodeBinary(data []byte) (*table.Model, error) {
	var bm binaryModel
	if err := rezi.DecBinary(data, &bm); err != nil {
		return nil, fmt.Errorf("ways: decoding binary model: %w", err)
	}
	return bm.m, nil
}
