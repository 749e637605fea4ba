// Package codeplug owns the raw codeplug byte buffer, its metadata, and the
// dirty set of modified fields. It is a schema-driven object usable by any
// model registered in internal/radio; direct-file variable-length record
// parsing for legacy single-model dumps lives in internal/legacyrdt.
package codeplug

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/opencps/mocodeplug/internal/bitio"
	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/internal/schema"
)

// ModelInfo is the subset of a radio model descriptor the Codeplug object
// needs. internal/radio.Model implements this interface; codeplug does not
// import internal/radio, so the model registry can depend on Codeplug
// instead of the reverse.
type ModelInfo interface {
	ID() string
	DisplayName() string
	CodeplugSize() int
	FieldByID(id string) (*schema.Field, bool)
	ApplyDependencies(fieldID string, cp *Codeplug) error
}

// Metadata is the persisted, non-codeplug record attached to a Codeplug:
// the fields serialized into a file container's metadata_json.
type Metadata struct {
	RadioSerialNumber string    `json:"radio_serial_number"`
	RadioModelName    string    `json:"radio_model_name"`
	FirmwareVersion   string    `json:"firmware_version"`
	LastReadDate      time.Time `json:"last_read_date"`
	LastModified      time.Time `json:"last_modified"`
	CreatedDate       time.Time `json:"created_date"`
	Notes             string    `json:"notes"`
}

// Codeplug owns a raw byte buffer and enforces that all mutation happens
// through the schema-validated Set API. It carries no internal lock: per
// the concurrency model, a Codeplug is owned by exactly one task at a time,
// and sharing across tasks requires external synchronization.
type Codeplug struct {
	modelID string
	model   ModelInfo
	raw     []byte
	meta    Metadata
	dirty   map[string]struct{}

	suppressDeps bool // true while a dependency reactor's own writes are in flight
}

// New creates a Codeplug over raw, owned by model. raw's length must equal
// the model's declared codeplug size.
func New(model ModelInfo, raw []byte, meta Metadata) (*Codeplug, error) {
	if len(raw) != model.CodeplugSize() {
		return nil, fmt.Errorf("codeplug buffer is %d bytes, model %q requires %d", len(raw), model.ID(), model.CodeplugSize())
	}
	return &Codeplug{
		modelID: model.ID(),
		model:   model,
		raw:     raw,
		meta:    meta,
		dirty:   make(map[string]struct{}),
	}, nil
}

// ModelID returns the owning model's identifier.
func (cp *Codeplug) ModelID() string { return cp.modelID }

// Raw returns the underlying buffer. Callers must respect the single-writer
// discipline: do not retain a reference across a hand-off to another task.
func (cp *Codeplug) Raw() []byte { return cp.raw }

// Metadata returns a copy of the current metadata record.
func (cp *Codeplug) Metadata() Metadata { return cp.meta }

// SetMetadata replaces the metadata record wholesale, used by callers
// restoring from a file container or after an identify step.
func (cp *Codeplug) SetMetadata(m Metadata) { cp.meta = m }

// Get reads the typed value at field's offset/length. For strings, it stops
// at the first NUL; for enumerations, it returns the raw numeric tag.
func (cp *Codeplug) Get(field *schema.Field) (schema.Value, error) {
	if field.BitOffset+field.BitLength > len(cp.raw)*8 {
		return schema.Value{}, &radioerr.BoundsError{Field: field.ID, Msg: "field extends past buffer"}
	}
	u := bitio.NewUnpacker(cp.raw)
	u.SeekBit(field.BitOffset)

	switch field.Kind {
	case schema.KindU8:
		return schema.U8(uint8(u.ReadUint(field.BitLength))), nil
	case schema.KindI8:
		return schema.I8(int8(u.ReadUint(field.BitLength))), nil
	case schema.KindU16:
		if byteAlignedFull(field, 16) {
			return schema.U16(u.ReadU16(endianOf(field))), nil
		}
		return schema.U16(uint16(u.ReadUint(field.BitLength))), nil
	case schema.KindI16:
		if byteAlignedFull(field, 16) {
			return schema.I16(int16(u.ReadU16(endianOf(field)))), nil
		}
		return schema.I16(int16(u.ReadUint(field.BitLength))), nil
	case schema.KindU32:
		if byteAlignedFull(field, 32) {
			return schema.U32(u.ReadU32(endianOf(field))), nil
		}
		return schema.U32(u.ReadUint(field.BitLength)), nil
	case schema.KindI32:
		if byteAlignedFull(field, 32) {
			return schema.I32(int32(u.ReadU32(endianOf(field)))), nil
		}
		return schema.I32(int32(u.ReadUint(field.BitLength))), nil
	case schema.KindBool:
		return schema.Bool(u.ReadUint(field.BitLength) != 0), nil
	case schema.KindString:
		return schema.String(u.ReadString(field.BitLength/8, field.TextEncode)), nil
	case schema.KindBytes:
		return schema.BytesValue(u.ReadBytes(field.BitLength / 8)), nil
	case schema.KindEnum:
		return schema.Enum(u.ReadUint(field.BitLength)), nil
	case schema.KindBitField:
		return schema.BitField(u.ReadUint(field.BitLength)), nil
	default:
		return schema.Value{}, &radioerr.BoundsError{Field: field.ID, Msg: "unknown field kind"}
	}
}

// Set validates value against field's constraint, then writes it. On
// success it marks field dirty, bumps LastModified, and invokes the owning
// model's dependency reactor. On constraint failure the buffer and dirty
// set are left untouched: validation always runs before any byte of the
// buffer is mutated.
func (cp *Codeplug) Set(value schema.Value, field *schema.Field) error {
	if field.ReadOnly {
		return &radioerr.ConstraintFailed{Field: field.ID, Msg: "field is read-only"}
	}
	if field.BitOffset+field.BitLength > len(cp.raw)*8 {
		return &radioerr.BoundsError{Field: field.ID, Msg: "field extends past buffer"}
	}
	if err := field.Constraint.Validate(value); err != nil {
		return &radioerr.ConstraintFailed{Field: field.ID, Msg: err.Error()}
	}

	cp.write(value, field)
	cp.dirty[field.ID] = struct{}{}
	cp.meta.LastModified = time.Now()

	if !cp.suppressDeps {
		cp.suppressDeps = true
		defer func() { cp.suppressDeps = false }()
		if err := cp.model.ApplyDependencies(field.ID, cp); err != nil {
			return fmt.Errorf("dependency reactor for field %q: %w", field.ID, err)
		}
	}
	return nil
}

func (cp *Codeplug) write(value schema.Value, field *schema.Field) {
	p := bitio.NewPacker(cp.raw)
	p.SeekBit(field.BitOffset)

	switch field.Kind {
	case schema.KindU8, schema.KindI8:
		p.WriteUint(value.AsUint(), field.BitLength)
	case schema.KindU16, schema.KindI16:
		if byteAlignedFull(field, 16) {
			p.WriteU16(uint16(value.AsUint()), endianOf(field))
			return
		}
		p.WriteUint(value.AsUint(), field.BitLength)
	case schema.KindU32, schema.KindI32:
		if byteAlignedFull(field, 32) {
			p.WriteU32(value.AsUint(), endianOf(field))
			return
		}
		p.WriteUint(value.AsUint(), field.BitLength)
	case schema.KindBool:
		var n uint32
		if value.AsBool() {
			n = 1
		}
		p.WriteUint(n, field.BitLength)
	case schema.KindString:
		p.WriteString(value.AsString(), field.BitLength/8, field.TextEncode)
	case schema.KindBytes:
		buf := make([]byte, field.BitLength/8)
		copy(buf, value.AsBytes())
		p.WriteBytes(buf)
	case schema.KindEnum, schema.KindBitField:
		p.WriteUint(value.AsUint(), field.BitLength)
	}
}

func byteAlignedFull(f *schema.Field, width int) bool {
	return f.BitOffset%8 == 0 && f.BitLength == width
}

// endianOf returns the field's declared byte order, defaulting to
// little-endian.
func endianOf(f *schema.Field) binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsModified reports whether fieldID has been written since the last clear.
func (cp *Codeplug) IsModified(fieldID string) bool {
	_, ok := cp.dirty[fieldID]
	return ok
}

// ClearModifications empties the dirty set. It never touches the buffer.
func (cp *Codeplug) ClearModifications() {
	cp.dirty = make(map[string]struct{})
}

// HasUnsavedChanges reports whether the dirty set is non-empty.
func (cp *Codeplug) HasUnsavedChanges() bool {
	return len(cp.dirty) > 0
}

// DirtyFieldIDs returns a snapshot of the dirty set.
func (cp *Codeplug) DirtyFieldIDs() []string {
	out := make([]string, 0, len(cp.dirty))
	for id := range cp.dirty {
		out = append(out, id)
	}
	return out
}

// FieldByID looks up a field descriptor through the owning model.
func (cp *Codeplug) FieldByID(id string) (*schema.Field, bool) {
	return cp.model.FieldByID(id)
}
