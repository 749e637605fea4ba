package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opencps/mocodeplug/cmd"
	"github.com/opencps/mocodeplug/internal/radioerr"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the error taxonomy to process exit codes:
// 2 invalid args, 3 I/O, 4 protocol, 5 validation, 6 verify
// mismatch, 1 for anything else.
func exitCodeFor(err error) int {
	var bounds *radioerr.BoundsError
	var constraintFailed *radioerr.ConstraintFailed
	if errors.As(err, &bounds) || errors.As(err, &constraintFailed) {
		return 2
	}

	var invalidFormat *radioerr.InvalidFormat
	var unsupportedVersion *radioerr.UnsupportedVersion
	var corrupted *radioerr.Corrupted
	var missingPassword *radioerr.MissingPassword
	var badPassword *radioerr.BadPassword
	if errors.As(err, &invalidFormat) || errors.As(err, &unsupportedVersion) ||
		errors.As(err, &corrupted) || errors.As(err, &missingPassword) || errors.As(err, &badPassword) {
		return 3
	}

	var transportErr *radioerr.TransportError
	var timeout *radioerr.Timeout
	var authFailed *radioerr.AuthFailed
	var unsupportedAuth *radioerr.UnsupportedAuth
	var xcmpErr *radioerr.XcmpError
	var modelMismatch *radioerr.ModelMismatch
	var partitionMismatch *radioerr.PartitionSizeMismatch
	if errors.As(err, &transportErr) || errors.As(err, &timeout) || errors.As(err, &authFailed) ||
		errors.As(err, &unsupportedAuth) || errors.As(err, &xcmpErr) ||
		errors.As(err, &modelMismatch) || errors.As(err, &partitionMismatch) {
		return 4
	}

	var validationFailed *radioerr.ValidationFailed
	if errors.As(err, &validationFailed) {
		return 5
	}

	var verifyFailed *radioerr.VerifyFailed
	if errors.As(err, &verifyFailed) {
		return 6
	}

	return 1
}
