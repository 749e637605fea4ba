// Package radioerr implements the error taxonomy from the core spec's
// error-handling design: one Go type per row, returned as an explicit
// result rather than a sentinel or panic, checked at call sites with
// errors.As.
package radioerr

import "fmt"

// BoundsError indicates a schema or codeplug bug: a field descriptor that
// violates its own invariants. Never expected to occur against a
// registered, validated model.
type BoundsError struct {
	Field string
	Msg   string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds error on field %q: %s", e.Field, e.Msg)
}

// ConstraintFailed is returned by Codeplug.Set when a candidate value fails
// its field's constraint. The buffer and dirty set are left untouched.
type ConstraintFailed struct {
	Field string
	Msg   string
}

func (e *ConstraintFailed) Error() string {
	return fmt.Sprintf("constraint failed on field %q: %s", e.Field, e.Msg)
}

// InvalidFormat indicates a file container with a bad magic number.
type InvalidFormat struct{ Msg string }

func (e *InvalidFormat) Error() string { return "invalid format: " + e.Msg }

// UnsupportedVersion indicates a file container version this build cannot
// decode, or an encrypted v1 container (v1 never had AEAD).
type UnsupportedVersion struct{ Version int }

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported container version %d", e.Version)
}

// Corrupted indicates a truncated or otherwise structurally broken body.
type Corrupted struct{ Msg string }

func (e *Corrupted) Error() string { return "corrupted container: " + e.Msg }

// MissingPassword indicates an encrypted container opened without a password.
type MissingPassword struct{}

func (e *MissingPassword) Error() string { return "password required to decrypt container" }

// BadPassword indicates AEAD authentication failure (wrong password).
type BadPassword struct{}

func (e *BadPassword) Error() string { return "incorrect password" }

// TransportError wraps a lower-level I/O failure from a transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Timeout indicates a transport or XCMP operation exceeded its deadline.
type Timeout struct{ Op string }

func (e *Timeout) Error() string { return fmt.Sprintf("timeout during %s", e.Op) }

// AuthFailed indicates the radio rejected the XNL authentication response.
type AuthFailed struct{ Reason string }

func (e *AuthFailed) Error() string { return "authentication failed: " + e.Reason }

// UnsupportedAuth indicates the radio's family has no known keyed-challenge
// transform; the session must not guess.
type UnsupportedAuth struct{ Family string }

func (e *UnsupportedAuth) Error() string {
	return fmt.Sprintf("no authentication transform known for radio family %q", e.Family)
}

// XcmpError carries a NACK's opcode and status code.
type XcmpError struct {
	Opcode uint16
	Code   byte
	Msg    string
}

func (e *XcmpError) Error() string {
	return fmt.Sprintf("xcmp error: opcode 0x%04x code %d: %s", e.Opcode, e.Code, e.Msg)
}

// ModelMismatch indicates the radio identified as a different model than
// the caller supplied.
type ModelMismatch struct {
	Expected, Actual string
}

func (e *ModelMismatch) Error() string {
	return fmt.Sprintf("model mismatch: expected %q, radio identified as %q", e.Expected, e.Actual)
}

// PartitionSizeMismatch indicates the radio's codeplug partition size
// disagrees with the model's declared codeplug size.
type PartitionSizeMismatch struct {
	Expected, Actual int
}

func (e *PartitionSizeMismatch) Error() string {
	return fmt.Sprintf("partition size mismatch: model declares %d bytes, radio reports %d", e.Expected, e.Actual)
}

// ValidationFailed indicates a pre-write model validation found at least
// one error-severity issue.
type ValidationFailed struct {
	Issues []string
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("validation failed: %d issue(s)", len(e.Issues))
}

// VerifyFailed indicates a post-write readback mismatched the written
// buffer at the given byte offset.
type VerifyFailed struct {
	Offset int
}

func (e *VerifyFailed) Error() string {
	return fmt.Sprintf("verification failed: first differing byte at offset %d", e.Offset)
}

// Aborted indicates the caller cancelled a programming procedure; BytesDone
// reports how much had been transferred.
type Aborted struct {
	BytesDone int
}

func (e *Aborted) Error() string {
	return fmt.Sprintf("aborted after %d bytes", e.BytesDone)
}
