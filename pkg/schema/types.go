package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for option validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// IsRequired reports whether the option must be present.
	IsRequired() bool
}

type stringType struct{ required bool }

func (t *stringType) Name() string     { return "string" }
func (t *stringType) IsRequired() bool { return t.required }

func (t *stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type intType struct{ required bool }

func (t *intType) Name() string     { return "int" }
func (t *intType) IsRequired() bool { return t.required }

func (t *intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON/YAML unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{ required bool }

func (t *floatType) Name() string     { return "float" }
func (t *floatType) IsRequired() bool { return t.required }

func (t *floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

type boolType struct{ required bool }

func (t *boolType) Name() string     { return "bool" }
func (t *boolType) IsRequired() bool { return t.required }

func (t *boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type sliceType struct {
	elemType Type
	required bool
}

func (t *sliceType) Name() string     { return fmt.Sprintf("[%s]", t.elemType.Name()) }
func (t *sliceType) IsRequired() bool { return t.required }

func (t *sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type requiredType struct{ Type }

func (t *requiredType) IsRequired() bool { return true }

// --- Factory Functions ---

// String creates a string option validator.
func String() Type { return &stringType{} }

// Int creates an integer option validator.
func Int() Type { return &intType{} }

// Float creates a float option validator.
func Float() Type { return &floatType{} }

// Bool creates a boolean option validator.
func Bool() Type { return &boolType{} }

// Slice creates a slice option validator for elements of the given type.
func Slice(elemType Type) Type { return &sliceType{elemType: elemType} }

// Required marks an option as mandatory.
func Required(t Type) Type { return &requiredType{t} }
