/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema

import "errors"

// Sentinel errors shared by the extraction and sync pipelines.
var (
	// ErrUnknownVersion indicates an unrecognized schema version.
	ErrUnknownVersion = errors.New("unknown schema version")

	// ErrHost indicates the host document rejected an enumeration or mutation.
	ErrHost = errors.New("host document error")

	// ErrInvalidPayload indicates an import payload that is not a token tree.
	ErrInvalidPayload = errors.New("invalid token payload")

	// ErrCircularReference indicates a circular reference was detected.
	ErrCircularReference = errors.New("circular reference detected")

	// ErrUnresolvedReference indicates a reference could not be resolved.
	ErrUnresolvedReference = errors.New("unresolved token reference")

	// ErrUnresolvedAlias indicates a reference names no existing variable.
	ErrUnresolvedAlias = errors.New("reference does not name a variable")

	// ErrInvalidColor indicates a color string could not be parsed.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidValue indicates a value cannot be decoded to the target native type.
	ErrInvalidValue = errors.New("invalid value for native type")
)
