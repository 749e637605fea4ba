// Package program implements the read and write programming procedures:
// open a session, identify the radio, resolve the codeplug partition,
// clone or push the buffer in chunks with progress reporting, and, for
// writes, verify the result byte-for-byte.
package program

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/internal/xcmp"
	"github.com/opencps/mocodeplug/internal/xnl"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

const (
	codeplugPartition = "CP"
	chunkSize         = 256
)

// ProgressFn receives bytes_done/size as the loop advances. It is called
// in-order on the caller's own goroutine, never concurrently.
type ProgressFn func(bytesDone, size int)

// Session bundles the protocol layers a programming procedure drives.
type Session struct {
	XNL    *xnl.Session
	XCMP   *xcmp.Client
	Log    logrus.FieldLogger
}

func (s *Session) log() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// sessionID is a caller-chosen non-zero id; a fixed constant is sufficient
// since only one outstanding session exists per transport at a time.
const fixedSessionID = 0xBEEF

// Read clones the radio's codeplug: identify, resolve the partition,
// fetch it in chunks, and return a Codeplug with an empty dirty set.
func Read(ctx context.Context, s *Session, model *radio.Model, progress ProgressFn) (*codeplug.Codeplug, error) {
	ident, err := s.XCMP.Identify(ctx)
	if err != nil {
		return nil, err
	}
	if ident.Model != model.ID() {
		return nil, &radioerr.ModelMismatch{Expected: model.ID(), Actual: ident.Model}
	}

	part, err := s.XCMP.QueryPartition(ctx, codeplugPartition)
	if err != nil {
		return nil, err
	}
	if part.Size() != model.CodeplugSize() {
		return nil, &radioerr.PartitionSizeMismatch{Expected: model.CodeplugSize(), Actual: part.Size()}
	}

	if err := s.XCMP.StartSession(ctx, fixedSessionID, xcmp.SessionModeRead); err != nil {
		return nil, err
	}

	size := part.Size()
	buf := make([]byte, 0, size)
	for offset := 0; offset < size; {
		if err := ctx.Err(); err != nil {
			_ = s.XCMP.ResetSession(ctx, fixedSessionID)
			return nil, &radioerr.Aborted{BytesDone: offset}
		}
		n := chunkSize
		if size-offset < n {
			n = size - offset
		}
		chunk, err := s.XCMP.BlockRead(ctx, fixedSessionID, part.Start+uint32(offset), uint16(n))
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
		offset += n
		if progress != nil {
			progress(offset, size)
		}
	}

	if err := s.XCMP.ResetSession(ctx, fixedSessionID); err != nil {
		return nil, err
	}

	meta := codeplug.Metadata{
		RadioSerialNumber: ident.Serial,
		RadioModelName:    ident.Model,
		FirmwareVersion:   ident.Firmware,
	}
	cp, err := codeplug.New(model, buf, meta)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	s.log().WithField("bytes", size).Info("read complete")
	return cp, nil
}

// Write pushes cp's buffer to the radio: validate, transfer in chunks,
// reset the session, then verify the radio's contents byte-for-byte.
func Write(ctx context.Context, s *Session, model *radio.Model, cp *codeplug.Codeplug, progress ProgressFn) error {
	if issues := model.Validate(cp); hasError(issues) {
		msgs := make([]string, 0, len(issues))
		for _, i := range issues {
			if i.Severity == radio.SeverityError {
				msgs = append(msgs, i.Message)
			}
		}
		return &radioerr.ValidationFailed{Issues: msgs}
	}

	ident, err := s.XCMP.Identify(ctx)
	if err != nil {
		return err
	}
	if ident.Model != model.ID() {
		return &radioerr.ModelMismatch{Expected: model.ID(), Actual: ident.Model}
	}

	part, err := s.XCMP.QueryPartition(ctx, codeplugPartition)
	if err != nil {
		return err
	}
	if part.Size() != model.CodeplugSize() {
		return &radioerr.PartitionSizeMismatch{Expected: model.CodeplugSize(), Actual: part.Size()}
	}

	if err := s.XCMP.StartSession(ctx, fixedSessionID, xcmp.SessionModeWrite); err != nil {
		return err
	}

	buf := cp.Raw()
	size := len(buf)
	for offset := 0; offset < size; {
		if err := ctx.Err(); err != nil {
			_ = s.XCMP.ResetSession(ctx, fixedSessionID)
			return &radioerr.Aborted{BytesDone: offset}
		}
		n := chunkSize
		if size-offset < n {
			n = size - offset
		}
		if err := s.XCMP.BlockWrite(ctx, fixedSessionID, part.Start+uint32(offset), buf[offset:offset+n]); err != nil {
			return err
		}
		offset += n
		if progress != nil {
			progress(offset, size)
		}
	}

	if err := s.XCMP.ResetSession(ctx, fixedSessionID); err != nil {
		return err
	}

	if err := verify(ctx, s, part, buf); err != nil {
		return err
	}
	s.log().WithField("bytes", size).Info("write complete, verified")
	return nil
}

// verify reads the codeplug partition back and compares it byte-for-byte
// against what was just written.
func verify(ctx context.Context, s *Session, part xcmp.Partition, want []byte) error {
	if err := s.XCMP.StartSession(ctx, fixedSessionID, xcmp.SessionModeRead); err != nil {
		return err
	}
	defer s.XCMP.ResetSession(ctx, fixedSessionID)

	size := len(want)
	got := make([]byte, 0, size)
	for offset := 0; offset < size; {
		n := chunkSize
		if size-offset < n {
			n = size - offset
		}
		chunk, err := s.XCMP.BlockRead(ctx, fixedSessionID, part.Start+uint32(offset), uint16(n))
		if err != nil {
			return err
		}
		got = append(got, chunk...)
		offset += n
	}
	if !bytes.Equal(got, want) {
		for i := range want {
			if i >= len(got) || got[i] != want[i] {
				return &radioerr.VerifyFailed{Offset: i}
			}
		}
		return &radioerr.VerifyFailed{Offset: len(want)}
	}
	return nil
}

func hasError(issues []radio.Issue) bool {
	for _, i := range issues {
		if i.Severity == radio.SeverityError {
			return true
		}
	}
	return false
}
