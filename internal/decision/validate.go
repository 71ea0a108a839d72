package decision

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The completion answer must be a bare JSON object carrying the two field
// keys. Anything else resolves to the sentinel for both fields.
const responseSchema = `{
	"type": "object",
	"properties": {
		"funcionario": {},
		"empresa": {}
	}
}`

var responseValidator = jsonschema.MustCompileString("llm_response.json", responseSchema)

// ValidateResponse parses raw strictly as JSON and coerces each field to a
// member of its whitelist or the sentinel. The external service can only
// select, never invent: out-of-whitelist values, non-strings, missing keys,
// and malformed JSON all become Undefined.
func ValidateResponse(raw string, allowedFuncionarios, allowedEmpresas []string) Decision {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Decision{Funcionario: Undefined, Empresa: Undefined}
	}
	if err := responseValidator.Validate(v); err != nil {
		return Decision{Funcionario: Undefined, Empresa: Undefined}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Decision{Funcionario: Undefined, Empresa: Undefined}
	}
	return Decision{
		Funcionario: validateChoice(obj["funcionario"], allowedFuncionarios),
		Empresa:     validateChoice(obj["empresa"], allowedEmpresas),
	}
}

func validateChoice(value any, allowed []string) string {
	s, ok := value.(string)
	if !ok {
		return Undefined
	}
	if s == Undefined {
		return Undefined
	}
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return Undefined
}
