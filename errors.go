package main

import "fmt"

// ConnectionError wraps a failure to reach or authenticate against a source
// or target system.
type ConnectionError struct {
	Kind string // source kind, e.g. "postgres"
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedSourceError is returned for source kinds the engine knows about
// but does not implement.
type UnsupportedSourceError struct {
	Kind string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source kind %q", e.Kind)
}

// MappingError reports a record that could not be mapped onto the target
// model.
type MappingError struct {
	Table  string
	Record string // stringified source PK
	Field  string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("map %s record %s field %s: %v", e.Table, e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("map %s record %s: %v", e.Table, e.Record, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// TransformError reports a value transform failure for a single field.
type TransformError struct {
	Table     string
	Record    string
	Field     string
	Transform string
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s on %s record %s field %s: %v",
		e.Transform, e.Table, e.Record, e.Field, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// WriteError reports a target-store write failure for a single record.
type WriteError struct {
	Table  string
	Record string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s record %s: %v", e.Table, e.Record, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
