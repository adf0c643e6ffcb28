package tx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownOperationType is returned when an operation type is unknown.
var ErrUnknownOperationType = errors.New("unknown operation type")

// Factory creates an empty operation of a concrete type.
type Factory func() Operation

var factories = make(map[Type]Factory)

// Register registers an operation factory for a type. Called from the
// init() functions of the operation sub-packages.
func Register(t Type, f Factory) {
	if _, dup := factories[t]; dup {
		panic(fmt.Sprintf("operation type %s registered twice", t))
	}
	factories[t] = f
}

// New creates an empty operation of the given type.
func New(t Type) (Operation, error) {
	f, ok := factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperationType, t)
	}
	return f(), nil
}

// FromJSON decodes an operation from its JSON object form, dispatching on
// the OperationType field.
func FromJSON(data []byte) (Operation, error) {
	var raw struct {
		OperationType string `json:"OperationType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	opType, ok := TypeFromName(raw.OperationType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperationType, raw.OperationType)
	}

	op, err := New(opType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, op); err != nil {
		return nil, err
	}
	return op, nil
}
