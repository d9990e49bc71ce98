package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
)

// Param is one named tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Minimum     *int
	Maximum     *int
}

func Int(v int) *int {
	return &v
}

// ArgumentError reports arguments rejected before dispatch.
type ArgumentError struct {
	Missing []string
	Invalid []string
}

func (e *ArgumentError) Error() string {
	if len(e.Missing) > 0 {
		return "Error: missing required parameter(s): " + strings.Join(e.Missing, ", ")
	}
	return "Error: invalid arguments: " + strings.Join(e.Invalid, "; ")
}

func checkParams(tool string, params []Param) error {
	seen := map[string]bool{}
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name required", tool)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate parameter %s", tool, p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case TypeString:
			if p.Minimum != nil || p.Maximum != nil {
				return fmt.Errorf("tool %s: bounds on string parameter %s", tool, p.Name)
			}
			if p.Default != nil {
				if _, ok := p.Default.(string); !ok {
					return fmt.Errorf("tool %s: default of %s must be a string", tool, p.Name)
				}
			}
		case TypeInteger:
			if p.Default != nil {
				if _, ok := p.Default.(int); !ok {
					return fmt.Errorf("tool %s: default of %s must be an int", tool, p.Name)
				}
			}
		default:
			return fmt.Errorf("tool %s: unsupported type %q for %s", tool, p.Type, p.Name)
		}
		if p.Required && p.Default != nil {
			return fmt.Errorf("tool %s: required parameter %s has a default", tool, p.Name)
		}
	}
	return nil
}

// BuildSchema renders params as a JSON schema object.
func BuildSchema(params []Param) map[string]any {
	properties := map[string]any{}
	required := []string{}
	for _, p := range params {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if p.Minimum != nil {
			prop["minimum"] = *p.Minimum
		}
		if p.Maximum != nil {
			prop["maximum"] = *p.Maximum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

type argValidator struct {
	params []Param
	schema *jsonschema.Schema
}

func newArgValidator(name string, params []Param) (*argValidator, error) {
	doc, err := normalize(BuildSchema(params))
	if err != nil {
		return nil, fmt.Errorf("tool %s: schema: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	url := "mem://tools/" + name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("tool %s: schema: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("tool %s: schema: %w", name, err)
	}
	return &argValidator{params: params, schema: schema}, nil
}

// prepare checks required arguments, fills defaults and validates the result
// against the schema. The input map is not modified.
func (v *argValidator) prepare(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args)+len(v.params))
	for key, value := range args {
		if value != nil {
			out[key] = value
		}
	}
	var missing []string
	for _, p := range v.params {
		value, ok := out[p.Name]
		if p.Required {
			if !ok || isBlank(value) {
				missing = append(missing, p.Name)
			}
			continue
		}
		if !ok && p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	if len(missing) > 0 {
		return nil, &ArgumentError{Missing: missing}
	}

	instance, err := normalize(out)
	if err != nil {
		return nil, &ArgumentError{Invalid: []string{err.Error()}}
	}
	if err := v.schema.Validate(instance); err != nil {
		return nil, &ArgumentError{Invalid: validationMessages(err)}
	}
	return out, nil
}

func isBlank(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// normalize round-trips a value through JSON so numbers reach the validator
// as json.Number.
func normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

func validationMessages(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var out []string
	seen := map[string]bool{}
	for _, unit := range verr.BasicOutput().Errors {
		if unit.Error == nil {
			continue
		}
		msg := unit.Error.String()
		if unit.InstanceLocation != "" {
			msg = strings.TrimPrefix(unit.InstanceLocation, "/") + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
	}
	if len(out) == 0 {
		return []string{verr.Error()}
	}
	sort.Strings(out)
	return out
}
