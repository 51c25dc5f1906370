package prompt

// OutputSchema is the JSON schema the model answer must follow. It is
// tightened with util.LoadSchema before it is embedded in a prompt.
const OutputSchema = `{
  "type": "object",
  "properties": {
    "score": {
      "type": "object",
      "properties": {
        "clarity": {"type": "number"},
        "brevity": {"type": "number"},
        "hook": {"type": "number"},
        "fit": {"type": "number"},
        "readingLevel": {"type": "string"}
      }
    },
    "flags": {"type": "array", "items": {"type": "string"}},
    "suggestion": {
      "type": "object",
      "properties": {"text": {"type": "string"}}
    },
    "variants": {
      "type": "array",
      "maxItems": 3,
      "items": {
        "type": "object",
        "properties": {
          "label": {"type": "string"},
          "text": {"type": "string"}
        }
      }
    },
    "explanations": {"type": "array", "items": {"type": "string"}}
  }
}`
