package main

import (
	"errors"
)

// TypeError reports a value of the wrong kind reaching a typed accessor.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return sf("expected %s, got %s", e.Want, e.Got)
}

// SyntaxError is found by the validation pass before a script runs.
type SyntaxError struct {
	File   string
	Line   int
	Source string
	Msg    string
}

func (e *SyntaxError) Error() string {
	return sf("%s:%d: %s [%s]", e.File, e.Line+1, e.Msg, e.Source)
}

// ScriptError is a user level exception, catchable by '!' handlers.
// The location is filled in where it is first caught.
type ScriptError struct {
	Payload Value
	File    string
	Line    int
	Source  string
	located bool
}

func (e *ScriptError) Error() string {
	if !e.located {
		return e.Payload.String()
	}
	return sf("%s (%s:%d: %s)", e.Payload.String(), e.File, e.Line+1, e.Source)
}

func (e *ScriptError) locate(file string, line int, source string) {
	if e.located {
		return
	}
	e.File, e.Line, e.Source = file, line, source
	e.located = true
}

// ExitRequest unwinds the whole run. no handler sees it.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return sf("exit(%d)", e.Code)
}

func raise(payload Value) error {
	return &ScriptError{Payload: payload}
}

func raisef(format string, args ...any) error {
	return &ScriptError{Payload: String(sf(format, args...))}
}

// asScriptError promotes runtime failures to script exceptions. syntax
// errors and exit requests are returned as nil.
func asScriptError(err error) *ScriptError {
	var se *ScriptError
	if errors.As(err, &se) {
		return se
	}
	var syn *SyntaxError
	var ex *ExitRequest
	if errors.As(err, &syn) || errors.As(err, &ex) {
		return nil
	}
	return &ScriptError{Payload: String(err.Error())}
}
