// Package schema checks the structure of persisted track documents before
// they are decoded.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/coursetree/internal/fault"
)

//go:embed track.cue
var trackSchema string

// Validator checks documents against the embedded track schema. A cue
// context is not safe for concurrent use, so calls are serialized.
type Validator struct {
	mu    sync.Mutex
	ctx   *cue.Context
	track cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(trackSchema, cue.Filename("track.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile track schema: %w", err)
	}
	track := root.LookupPath(cue.ParsePath("#Track"))
	if err := track.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Track: %w", err)
	}
	return &Validator{ctx: ctx, track: track}, nil
}

var defaultValidator = sync.OnceValues(New)

// ValidateDocument checks a JSON document with the shared validator.
func ValidateDocument(name string, data []byte) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.Validate(name, data)
}

// Validate checks a JSON document. name is used in error positions.
// Violations are DataIntegrity errors.
func (v *Validator) Validate(name string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.ctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return schemaError(name, "document is not valid JSON", err)
	}
	if err := v.track.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return schemaError(name, "document does not match track schema", err)
	}
	return nil
}

// schemaError keeps the first CUE error and its position, the way the
// compiler reports them.
func schemaError(name, msg string, err error) error {
	fe := &fault.Error{
		Code:    fault.CodeDataIntegrity,
		Message: msg,
		Entity:  "document",
		ID:      name,
		Err:     err,
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return fe
	}
	fe.Details = map[string]string{"count": fmt.Sprint(len(errs))}
	first := errs[0]
	fe.Err = first
	if path := first.Path(); len(path) > 0 {
		fe.Details["path"] = fmt.Sprint(path)
	}
	if pos := errors.Positions(first); len(pos) > 0 {
		fe.Details["position"] = pos[0].String()
	}
	return fe
}
