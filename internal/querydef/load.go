package querydef

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load error codes.
const (
	ErrCodeReadFailed        = "E201" // query file could not be read
	ErrCodeUnsupportedFormat = "E202" // unknown file extension
	ErrCodeParseFailed       = "E203" // YAML or CUE syntax error
	ErrCodeSchema            = "E204" // CUE schema violation
)

// LoadError reports a query file that could not be read or parsed.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a query definition from path and validates it.
//
// The format follows the extension: .yaml and .yml are YAML, .cue and
// .json are evaluated as CUE against the query schema.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to read query file: %v", err)}
	}

	var def *Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		def, err = ParseYAML(data)
	case ".cue", ".json":
		def, err = ParseCUE(data, path)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported query file %q: expected .yaml, .yml, .cue or .json", filepath.Base(path)),
		}
	}
	if err != nil {
		return nil, err
	}

	if errs := Validate(def); len(errs) > 0 {
		return nil, errs
	}
	return def, nil
}

// ParseYAML decodes a YAML definition. Unknown fields are rejected.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return &def, nil
}

// ParseCUE evaluates a CUE (or JSON) definition, unifies it with the
// query schema and decodes the result. filename is used in positions.
func ParseCUE(data []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile query schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(ErrCodeParseFailed, err)
	}

	v = schema.LookupPath(cue.ParsePath("#Query")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	var def Definition
	if err := v.Decode(&def); err != nil {
		return nil, formatCUEError(ErrCodeParseFailed, err)
	}
	return &def, nil
}

// formatCUEError keeps the first error of a CUE error list together with
// its position.
func formatCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	loadErr := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
