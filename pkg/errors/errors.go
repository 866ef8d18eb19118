// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode is the stable diagnostic code printed in front of every
// fatal message. Codes never change meaning between releases.
type ErrorCode string

const (
	// ErrCodeInputParse indicates the input is not a well-formed document.
	ErrCodeInputParse ErrorCode = "E1001"
	// ErrCodeInputRead indicates the input exists but could not be read.
	ErrCodeInputRead ErrorCode = "E1002"
	// ErrCodeTemplateNotFound indicates the named template is not in the template root.
	ErrCodeTemplateNotFound ErrorCode = "E1101"
	// ErrCodeTemplateRender indicates the template failed to parse or execute.
	ErrCodeTemplateRender ErrorCode = "E1102"
	// ErrCodeGenerate indicates a skeleton document could not be generated.
	ErrCodeGenerate ErrorCode = "E1200"
	// ErrCodeSchemaLoad indicates a schema resource is missing or malformed.
	ErrCodeSchemaLoad ErrorCode = "E1300"
	// ErrCodeValidation indicates the document violates one or more schemas.
	ErrCodeValidation ErrorCode = "E1400"
	// ErrCodeTooDeep indicates the document nests deeper than the configured limit.
	ErrCodeTooDeep ErrorCode = "E1401"
	// ErrCodeOutputWrite indicates the rendered artifact could not be written.
	ErrCodeOutputWrite ErrorCode = "E1500"
	// ErrCodeInvalidRequest indicates invalid command arguments or options.
	ErrCodeInvalidRequest ErrorCode = "E1600"
	// ErrCodeUnknown indicates an uncategorized failure.
	ErrCodeUnknown ErrorCode = "E9999"
)

// Informational codes are logged, never returned as errors.
const (
	// InfoLiteralFallback is logged when the input reference is not a file
	// and is parsed as literal document text instead.
	InfoLiteralFallback = "I2000"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in the chain,
// or ErrCodeUnknown when err carries none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}

// Format renders err as the single diagnostic line shown to the user.
// At verbosity 0 only the stable code and message are printed. Higher
// verbosity appends the underlying cause and the structured context.
func Format(err error, verbosity int) string {
	if err == nil {
		return ""
	}

	var se *StructuredError
	if !stderrors.As(err, &se) {
		if verbosity <= 0 {
			return fmt.Sprintf("%s: An unknown error has occurred!", ErrCodeUnknown)
		}
		return fmt.Sprintf("%s: An unknown error has occurred!\n  cause: %v\n  type: %T", ErrCodeUnknown, err, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", se.Code, se.Message)
	if verbosity <= 0 {
		return b.String()
	}

	if se.Cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", se.Cause)
	}
	if len(se.Context) > 0 {
		keys := make([]string, 0, len(se.Context))
		for k := range se.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, se.Context[k])
		}
	}
	return b.String()
}
