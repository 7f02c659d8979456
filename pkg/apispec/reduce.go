package apispec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/espalier/pkg/domain"
)

// summaryMaxLen bounds the free-text summary kept per operation.
const summaryMaxLen = 200

// Load parses an OpenAPI v3 document (JSON or YAML) from raw bytes.
func Load(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSpec, err)
	}
	return doc, nil
}

// LoadFile parses an OpenAPI v3 document from a file path.
func LoadFile(path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSpec, err)
	}
	return doc, nil
}

// Reduce projects a full API description down to its reduced form.
//
// Per operation it keeps method, path, a one-line summary (falling back to
// the description when the summary is absent), and parameter metadata.
// Absent optional fields map to empty defaults. A description with no
// operations at all fails with domain.ErrMalformedSpec.
func Reduce(doc *openapi3.T) (*Reduced, error) {
	if doc == nil || doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, fmt.Errorf("%w: no paths defined", domain.ErrMalformedSpec)
	}

	red := &Reduced{}
	if doc.Info != nil {
		red.Title = doc.Info.Title
		red.Description = firstLine(doc.Info.Description)
	}
	for _, srv := range doc.Servers {
		red.Servers = append(red.Servers, srv.URL)
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			red.Endpoints = append(red.Endpoints, reduceOperation(method, path, item, op))
		}
	}

	if len(red.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: no operations defined", domain.ErrMalformedSpec)
	}

	// Map iteration order is random; make the projection deterministic.
	sort.Slice(red.Endpoints, func(i, j int) bool {
		if red.Endpoints[i].Path != red.Endpoints[j].Path {
			return red.Endpoints[i].Path < red.Endpoints[j].Path
		}
		return red.Endpoints[i].Method < red.Endpoints[j].Method
	})

	return red, nil
}

// ReduceBytes reduces a raw document, accepting either a full OpenAPI
// description or an already-reduced one. Reducing a reduced document yields
// the same content, which makes the operation idempotent end to end.
func ReduceBytes(data []byte) (*Reduced, error) {
	if red, ok := parseReduced(data); ok {
		return red, nil
	}

	doc, err := Load(data)
	if err != nil {
		return nil, err
	}
	return Reduce(doc)
}

// parseReduced detects the reduced JSON form by its endpoints collection.
func parseReduced(data []byte) (*Reduced, bool) {
	var probe struct {
		Endpoints []Operation `json:"endpoints"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Endpoints == nil {
		return nil, false
	}

	var red Reduced
	if err := json.Unmarshal(data, &red); err != nil {
		return nil, false
	}
	return &red, true
}

func reduceOperation(method, path string, item *openapi3.PathItem, op *openapi3.Operation) Operation {
	out := Operation{
		Method:  strings.ToUpper(method),
		Path:    path,
		Summary: operationSummary(op),
	}

	// Path-level parameters apply to every operation under the path.
	for _, ref := range item.Parameters {
		if p := reduceParameter(ref); p != nil {
			out.Parameters = append(out.Parameters, *p)
		}
	}
	for _, ref := range op.Parameters {
		if p := reduceParameter(ref); p != nil {
			out.Parameters = append(out.Parameters, *p)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		out.Parameters = append(out.Parameters, Parameter{
			Name:     "body",
			In:       "body",
			Required: op.RequestBody.Value.Required,
		})
	}

	return out
}

func operationSummary(op *openapi3.Operation) string {
	s := op.Summary
	if s == "" {
		s = op.Description
	}
	return firstLine(s)
}

func reduceParameter(ref *openapi3.ParameterRef) *Parameter {
	if ref == nil || ref.Value == nil {
		return nil
	}
	p := &Parameter{
		Name:     ref.Value.Name,
		In:       ref.Value.In,
		Required: ref.Value.Required,
	}
	if ref.Value.Schema != nil && ref.Value.Schema.Value != nil {
		if types := ref.Value.Schema.Value.Type; types != nil && len(*types) > 0 {
			p.Type = (*types)[0]
		}
	}
	return p
}

// firstLine trims text to its first non-empty line, bounded by summaryMaxLen.
func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	runes := []rune(text)
	if len(runes) > summaryMaxLen {
		text = string(runes[:summaryMaxLen])
	}
	return text
}
