// Copyright 2024 The OpenIRR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serrors provides errors with attached key-value context. Errors
// created by this package support the standard Is and As functionality: for
// any error err returned here, errors.Is(err, err) holds, and if err wraps or
// joins err2, errors.Is(err, err2) holds as well. The context pairs render
// both in Error() output and as structured zap fields.
package serrors

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value any
}

// basicError is an error with a message, an optional cause and context pairs.
type basicError struct {
	msg   string
	cause error
	ctx   []ctxPair
}

func (e *basicError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	writeCtx(&sb, e.ctx)
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %s", e.cause)
	}
	return sb.String()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// MarshalLogObject implements zapcore.ObjectMarshaler for a structured log
// representation.
func (e *basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return marshalCtx(enc, e.cause, e.ctx)
}

// joinedError attaches a cause and context to a base error, typically a
// sentinel. errors.Is matches both the base error and the cause.
type joinedError struct {
	base  error
	cause error
	ctx   []ctxPair
}

func (e *joinedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.base.Error())
	writeCtx(&sb, e.ctx)
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %s", e.cause)
	}
	return sb.String()
}

func (e *joinedError) Unwrap() []error {
	errs := []error{e.base}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// MarshalLogObject implements zapcore.ObjectMarshaler. The base error is not
// dissected; it is rendered as its message.
func (e *joinedError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.base.Error())
	return marshalCtx(enc, e.cause, e.ctx)
}

// New creates a new error with the given message and context pairs. For
// sentinel errors that are only used with errors.Is, plain errors.New is
// preferable.
func New(msg string, errCtx ...any) error {
	return &basicError{msg: msg, ctx: mkCtx(errCtx)}
}

// Wrap returns an error with the given message that wraps cause and carries
// the given context pairs. errors.Is(result, cause) holds.
func Wrap(msg string, cause error, errCtx ...any) error {
	return &basicError{msg: msg, cause: cause, ctx: mkCtx(errCtx)}
}

// Join associates err, typically a sentinel, with an optional cause and
// context pairs. errors.Is matches err and, if non-nil, cause. Join returns
// nil if both err and cause are nil.
func Join(err, cause error, errCtx ...any) error {
	if err == nil && cause == nil {
		return nil
	}
	if err == nil {
		return &basicError{msg: cause.Error(), cause: cause, ctx: mkCtx(errCtx)}
	}
	return &joinedError{base: err, cause: cause, ctx: mkCtx(errCtx)}
}

// List is a slice of errors.
type List []error

// Error implements the error interface.
func (e List) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return fmt.Sprintf("[ %s ]", strings.Join(s, "; "))
}

// ToError returns nil for an empty list and the list itself otherwise.
func (e List) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Unwrap lets errors.Is and errors.As inspect the list members.
func (e List) Unwrap() []error {
	return e
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (e List) MarshalLogArray(ae zapcore.ArrayEncoder) error {
	for _, err := range e {
		if m, ok := err.(zapcore.ObjectMarshaler); ok {
			if err := ae.AppendObject(m); err != nil {
				return err
			}
		} else {
			ae.AppendString(err.Error())
		}
	}
	return nil
}

func mkCtx(errCtx []any) []ctxPair {
	pairs := make([]ctxPair, 0, len(errCtx)/2)
	for i := 0; i+1 < len(errCtx); i += 2 {
		pairs = append(pairs, ctxPair{Key: fmt.Sprint(errCtx[i]), Value: errCtx[i+1]})
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].Key < pairs[b].Key })
	return pairs
}

func writeCtx(sb *strings.Builder, pairs []ctxPair) {
	if len(pairs) == 0 {
		return
	}
	sb.WriteString(" {")
	for i, p := range pairs {
		if i != 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(sb, "%s=%v", p.Key, p.Value)
	}
	sb.WriteString("}")
}

func marshalCtx(enc zapcore.ObjectEncoder, cause error, pairs []ctxPair) error {
	if cause != nil {
		if m, ok := cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", cause.Error())
		}
	}
	for _, p := range pairs {
		zap.Any(p.Key, p.Value).AddTo(enc)
	}
	return nil
}
