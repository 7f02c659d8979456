package schema

import "sort"

// Schema is a map of option names to their expected types.
// Example: {"api_key": Required(String()), "temperature": Float()}
type Schema map[string]Type

// Validate checks data against the schema.
//
// Options declared in the schema are optional unless wrapped with Required.
// Options absent from the schema are rejected: a typo in a config file
// should fail loudly, not silently configure nothing.
// Returns an error aggregating all failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	// Unknown options first, in a stable order.
	var unknown []string
	for key := range data {
		if _, ok := schema[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, &ValidationError{
			Key:    key,
			Reason: "not a recognized option",
			Value:  data[key],
		})
	}

	var names []string
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		typ := schema[name]
		value, exists := data[name]
		if !exists {
			if typ.IsRequired() {
				errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			}
			continue
		}

		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    name,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
