package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// SchemaIssue is one problem found in a config file.
type SchemaIssue struct {
	Path    string // instance location, e.g. "/tools/curl"
	Message string
}

func (i SchemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError reports every issue found in a config file.
type SchemaError struct {
	File   string
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = "  " + issue.String()
	}
	return fmt.Sprintf("config file %s is invalid:\n%s", e.File, strings.Join(lines, "\n"))
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validateDocument checks the JSON document jsonData, decoded from file,
// against the config schema. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func validateDocument(file string, jsonData []byte) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("loading config schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", file, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating config file %s: %w", file, err)
	}
	return &SchemaError{File: file, Issues: collectIssues(ve)}
}

// collectIssues flattens the leaves of the validation error tree.
func collectIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		issue := SchemaIssue{Message: e.Error()}
		if len(e.InstanceLocation) > 0 {
			issue.Path = "/" + strings.Join(e.InstanceLocation, "/")
		}
		if e.ErrorKind != nil {
			issue.Message = e.ErrorKind.LocalizedString(printer)
		}
		issues = append(issues, issue)
	}
	walk(ve)
	return issues
}
