package design

import "fmt"

// TypeMismatchError reports a value unwrapped as the wrong variant, or an
// edge whose endpoint types disagree. Port is filled in where the port is
// known (it is empty when a bare Value is unwrapped outside a graph).
type TypeMismatchError struct {
	Port     InputID
	Expected PortType
	Actual   PortType
}

func (e *TypeMismatchError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("type mismatch at %s: expected %s, got %s", e.Port, e.Expected, e.Actual)
}

// MissingInputError reports an input the evaluator could not resolve:
// either the node carries no port by that name (a catalog inconsistency)
// or a connection-only port has no incoming edge.
type MissingInputError struct {
	Node NodeID
	Port string
	// Unknown marks a port name the node does not carry at all, a
	// catalog bug rather than a missing connection.
	Unknown bool
}

func (e *MissingInputError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("node %s: no input named %q", e.Node, e.Port)
	}
	return fmt.Sprintf("node %s: input %q is not connected", e.Node, e.Port)
}

// KernelError wraps a geometry kernel failure with the node that issued
// the call.
type KernelError struct {
	Node NodeID
	Err  error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("node %s: kernel: %v", e.Node, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// RootTypeError reports a root whose output type does not match the entry
// point used to evaluate it.
type RootTypeError struct {
	Root     OutputID
	Expected PortType
	Actual   PortType
}

func (e *RootTypeError) Error() string {
	return fmt.Sprintf("root %s: expected %s output, got %s", e.Root, e.Expected, e.Actual)
}

// EvalError wraps any failure during an evaluation pass with the root it
// was evaluating.
type EvalError struct {
	Root OutputID
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %s: %v", e.Root, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
