// Package radio is the process-wide model registry: per-model schema,
// default-codeplug factory, validator, and dependency reactor. Registration
// happens once at process initialization; after that the registry is
// read-only.
package radio

import (
	"fmt"
	"time"

	"github.com/opencps/mocodeplug/internal/schema"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

// Severity classifies a ValidationIssue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Issue is one finding from model-level validation.
type Issue struct {
	Severity Severity
	FieldID  string
	Message  string
}

// Band describes a supported frequency band.
type Band struct {
	Name        string
	LowerMHz    float64
	UpperMHz    float64
	SpacingKHz  float64
}

// DependencyFn performs the bounded additional writes a field's change
// requires. Implementations must not recurse: Codeplug.Set suppresses
// re-entrant dependency application for writes issued from within a
// DependencyFn.
type DependencyFn func(fieldID string, cp *codeplug.Codeplug) error

// ValidatorFn inspects a fully-populated Codeplug and returns every issue
// found; an empty slice means the codeplug is valid.
type ValidatorFn func(cp *codeplug.Codeplug) []Issue

// DefaultFactoryFn builds the default raw buffer and metadata for a brand
// new codeplug of this model.
type DefaultFactoryFn func() ([]byte, codeplug.Metadata)

// Model is an immutable per-radio descriptor: everything that varies
// between radio models is data attached here, not a type hierarchy.
type Model struct {
	IDStr       string
	Name        string
	Family      string
	SizeBytes   int
	MaxChannels int
	SupportedBand Band
	Tree        *schema.Node

	DefaultFactory   DefaultFactoryFn
	Validator        ValidatorFn
	Dependencies     map[string]DependencyFn

	fieldTable map[string]*schema.Field
}

// finalize builds the flat field table and validates every field against
// the model's declared size. Called once by Register.
func (m *Model) finalize() error {
	m.fieldTable = m.Tree.FieldTable()
	for id, f := range m.fieldTable {
		if err := f.Validate(m.SizeBytes); err != nil {
			return fmt.Errorf("model %q field %q: %w", m.IDStr, id, err)
		}
	}
	return nil
}

// ID implements codeplug.ModelInfo.
func (m *Model) ID() string { return m.IDStr }

// DisplayName implements codeplug.ModelInfo.
func (m *Model) DisplayName() string { return m.Name }

// CodeplugSize implements codeplug.ModelInfo.
func (m *Model) CodeplugSize() int { return m.SizeBytes }

// FieldByID implements codeplug.ModelInfo.
func (m *Model) FieldByID(id string) (*schema.Field, bool) {
	f, ok := m.fieldTable[id]
	return f, ok
}

// ApplyDependencies implements codeplug.ModelInfo. It terminates in
// O(#dependents): it runs exactly the dependency function registered for
// fieldID, if any, and nothing else.
func (m *Model) ApplyDependencies(fieldID string, cp *codeplug.Codeplug) error {
	fn, ok := m.Dependencies[fieldID]
	if !ok {
		return nil
	}
	return fn(fieldID, cp)
}

// Fields returns the flattened field list in tree order.
func (m *Model) Fields() []*schema.Field {
	return m.Tree.Flatten()
}

// CreateDefault builds a brand-new Codeplug from this model's default
// factory, with CreatedDate/LastModified stamped and an empty dirty set.
func (m *Model) CreateDefault() (*codeplug.Codeplug, error) {
	raw, meta := m.DefaultFactory()
	now := time.Now()
	if meta.CreatedDate.IsZero() {
		meta.CreatedDate = now
	}
	meta.LastModified = now
	cp, err := codeplug.New(m, raw, meta)
	if err != nil {
		return nil, fmt.Errorf("create default codeplug for %q: %w", m.IDStr, err)
	}
	return cp, nil
}

// Validate runs the model's validator, or returns no issues if none is
// registered.
func (m *Model) Validate(cp *codeplug.Codeplug) []Issue {
	if m.Validator == nil {
		return nil
	}
	return m.Validator(cp)
}
