package openapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/espalier/pkg/domain"
)

// plan is the request shape the model is asked to produce. Either URL is
// set directly, or Path (+ Params/Query) is expanded against the base URL.
type plan struct {
	Method  string            `json:"method"`
	URL     string            `json:"url,omitempty"`
	Path    string            `json:"path,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// parsePlan extracts the request plan from raw model output.
// It accepts a fenced ```json block or the first balanced JSON object.
func parsePlan(output string) (*plan, error) {
	raw := extractJSON(output)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", domain.ErrModelFailure)
	}

	var p plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: unparseable request plan: %v", domain.ErrModelFailure, err)
	}
	if p.Method == "" {
		return nil, fmt.Errorf("%w: request plan missing method", domain.ErrModelFailure)
	}
	if p.URL == "" && p.Path == "" {
		return nil, fmt.Errorf("%w: request plan missing url or path", domain.ErrModelFailure)
	}
	return &p, nil
}

// extractJSON returns the contents of the first fenced code block, or the
// first balanced top-level JSON object.
func extractJSON(output string) string {
	if idx := strings.Index(output, "```"); idx >= 0 {
		rest := output[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexByte(output, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(output); i++ {
		c := output[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return output[start : i+1]
			}
		}
	}
	return ""
}

// buildRequest resolves a plan into a concrete request. Path and query
// parameters are expanded with the standard OpenAPI styles (simple for
// path, form for query).
func buildRequest(baseURL string, p *plan) (*domain.ResolvedRequest, error) {
	if p.URL != "" {
		return &domain.ResolvedRequest{
			Method:  strings.ToUpper(p.Method),
			URL:     p.URL,
			Headers: p.Headers,
		}, nil
	}

	if baseURL == "" {
		return nil, fmt.Errorf("%w: request plan uses a path but the description has no base URL", domain.ErrModelFailure)
	}

	path := p.Path
	for name, value := range p.Params {
		styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
		if err != nil {
			return nil, fmt.Errorf("%w: path parameter %q: %v", domain.ErrModelFailure, name, err)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", styled)
	}
	if strings.Contains(path, "{") {
		return nil, fmt.Errorf("%w: unresolved path template %q", domain.ErrModelFailure, path)
	}

	full := strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")

	if len(p.Query) > 0 {
		values := url.Values{}
		for name, value := range p.Query {
			frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
			if err != nil {
				return nil, fmt.Errorf("%w: query parameter %q: %v", domain.ErrModelFailure, name, err)
			}
			parsed, err := url.ParseQuery(frag)
			if err != nil {
				return nil, fmt.Errorf("%w: query parameter %q: %v", domain.ErrModelFailure, name, err)
			}
			for k, vs := range parsed {
				for _, v := range vs {
					values.Add(k, v)
				}
			}
		}
		full += "?" + values.Encode()
	}

	return &domain.ResolvedRequest{
		Method:  strings.ToUpper(p.Method),
		URL:     full,
		Headers: p.Headers,
	}, nil
}

// hostAllowed reports whether the request target sits inside the allow-list.
// An empty allow-list permits every host.
func hostAllowed(rawURL string, allowList []string) bool {
	if len(allowList) == 0 {
		return true
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	for _, entry := range allowList {
		allowed, err := url.Parse(entry)
		if err != nil {
			continue
		}
		if strings.EqualFold(target.Scheme, allowed.Scheme) &&
			strings.EqualFold(target.Host, allowed.Host) {
			return true
		}
	}
	return false
}
