package ast

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders ArgKind as the names a hand-authored fixture would
// use rather than a bare integer.
func (k ArgKind) MarshalJSON() ([]byte, error) {
	switch k {
	case ArgLiteral:
		return json.Marshal("literal")
	case ArgVarRef:
		return json.Marshal("varref")
	default:
		return nil, fmt.Errorf("ast: invalid ArgKind %d", k)
	}
}

// UnmarshalJSON accepts "literal"/"varref".
func (k *ArgKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "literal":
		*k = ArgLiteral
	case "varref":
		*k = ArgVarRef
	default:
		return fmt.Errorf("ast: invalid ArgKind %q", s)
	}
	return nil
}
