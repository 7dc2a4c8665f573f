package prompt

// ResultSchema describes the object the model must return. The normalizer
// validates parsed output against it.
const ResultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ExtractionResult",
  "type": "object",
  "properties": {
    "Code":     { "type": ["string", "null"], "description": "source code or markup found in or requested by the input" },
    "Language": { "type": ["string", "null"], "description": "language of Code, lower case (python, javascript, html, ...)" },
    "Text":     { "type": ["string", "null"], "description": "plain-language answer or description" },
    "ImageUrl": { "type": ["string", "null"], "description": "absolute URL of a relevant image" }
  }
}`
