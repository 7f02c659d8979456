package apispec

// Parameter is the call-construction-relevant projection of an OpenAPI
// parameter: name, location (path/query/header/body), required flag, and
// primitive type. Nested object schemas are dropped.
type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Operation is one reduced API operation. The (Method, Path) pair is unique
// within one description.
type Operation struct {
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Summary    string      `json:"summary,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// Reduced is the lossy projection of a full API description.
type Reduced struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Servers     []string    `json:"servers,omitempty"`
	Endpoints   []Operation `json:"endpoints"`
}
