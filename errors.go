package qsim

import "errors"

var (
	// ErrDimensionMismatch is returned when a gate's size does not match the
	// number of qubits it is applied to.
	ErrDimensionMismatch = errors.New("gate dimension mismatch")

	// ErrIndexOutOfRange is returned for a qubit index outside the register.
	ErrIndexOutOfRange = errors.New("qubit index out of range")

	// ErrDuplicateTarget is returned when the same qubit is addressed twice by
	// one gate application.
	ErrDuplicateTarget = errors.New("duplicate qubit target")

	// ErrQubitCount is returned when a register size is zero, negative or above
	// the configured maximum.
	ErrQubitCount = errors.New("invalid qubit count")

	// ErrUnknownGate is returned by GateByName for a name it does not know.
	ErrUnknownGate = errors.New("unknown gate")

	// ErrGateParams is returned when a parameterized gate is requested with the
	// wrong number of angles.
	ErrGateParams = errors.New("wrong number of gate parameters")

	// ErrNotSeparable is returned when a single qubit cannot be read out of a
	// register because it is entangled with the rest of it.
	ErrNotSeparable = errors.New("qubit is not separable")

	// ErrZeroState is returned when a qubit with both amplitudes zero is
	// loaded into a register.
	ErrZeroState = errors.New("qubit has zero norm")

	// ErrInvalidConfig wraps every Config.Validate failure, including a bad
	// config handed to WithConfig.
	ErrInvalidConfig = errors.New("invalid config")
)
