package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadPrompt reads <dir>/<name>.<tp>.txt. An empty dir or a missing file
// yields an error so callers can fall back to the built-in text.
func LoadPrompt(dir, name, tp string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("prompt dir is empty")
	}
	p := filepath.Join(dir, fmt.Sprintf("%s.%s.txt", name, tp))
	b, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", p, err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("prompt %q is empty", p)
	}
	return s, nil
}

// LoadSchema decodes a JSON schema document and tightens it with FixJSONSchemaStrict.
func LoadSchema(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("bad schema: %w", err)
	}
	ensureSchemaMeta(m)
	FixJSONSchemaStrict(m)
	return m, nil
}

// Some clients expect $schema to be present.
func ensureSchemaMeta(m map[string]any) {
	if _, ok := m["$schema"]; !ok {
		m["$schema"] = "http://json-schema.org/draft-07/schema#"
	}
}

// FixJSONSchemaStrict puts a schema into strict form: every node with
// properties becomes type=object, lists all of its properties as required and
// forbids additional ones.
func FixJSONSchemaStrict(node any) {
	switch n := node.(type) {
	case map[string]any:
		if props, ok := n["properties"].(map[string]any); ok {
			if _, hasType := n["type"]; !hasType {
				n["type"] = "object"
			}
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			req := make([]any, 0, len(keys))
			for _, k := range keys {
				req = append(req, k)
			}
			n["required"] = req
			n["additionalProperties"] = false
			for _, v := range props {
				FixJSONSchemaStrict(v)
			}
		}
		if items, ok := n["items"]; ok {
			switch it := items.(type) {
			case map[string]any:
				FixJSONSchemaStrict(it)
			case []any:
				for _, el := range it {
					FixJSONSchemaStrict(el)
				}
			}
		}
		for _, k := range []string{"oneOf", "anyOf", "allOf"} {
			if arr, ok := n[k].([]any); ok {
				for _, el := range arr {
					FixJSONSchemaStrict(el)
				}
			}
		}
	case []any:
		for _, v := range n {
			FixJSONSchemaStrict(v)
		}
	}
}
