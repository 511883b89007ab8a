package fraud

// SchemaType names a JSON schema type in provider-neutral form.
type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaString  SchemaType = "string"
	SchemaInteger SchemaType = "integer"
	SchemaArray   SchemaType = "array"
)

// Schema is a minimal schema tree that each provider adapter converts into
// its own SDK type.
type Schema struct {
	Type        SchemaType
	Description string
	Enum        []string
	Items       *Schema
	Properties  map[string]*Schema
	// Order keeps property order stable for providers that honour it.
	Order    []string
	Required []string
}

// ResponseSchema describes Result minus Sources.
func ResponseSchema() *Schema {
	verdicts := make([]string, len(Verdicts))
	for i, v := range Verdicts {
		verdicts[i] = string(v)
	}
	return &Schema{
		Type: SchemaObject,
		Properties: map[string]*Schema{
			"riskScore": {
				Type:        SchemaInteger,
				Description: "A score from 0 to 100 indicating the likelihood of fraud. 0 is safe, 100 is definite scam.",
			},
			"verdict": {
				Type:        SchemaString,
				Enum:        verdicts,
				Description: "The overall verdict of the content.",
			},
			"redFlags": {
				Type:        SchemaArray,
				Description: "A list of specific red flags found in the content with brief explanations.",
				Items: &Schema{
					Type: SchemaObject,
					Properties: map[string]*Schema{
						"flag":        {Type: SchemaString, Description: "The name of the red flag (e.g., 'Urgency')"},
						"explanation": {Type: SchemaString, Description: "A concise explanation of why this is a flag (max 15 words)."},
					},
					Order:    []string{"flag", "explanation"},
					Required: []string{"flag", "explanation"},
				},
			},
			"analysis": {
				Type:        SchemaString,
				Description: "A detailed explanation of why the content was flagged or marked safe. Max 200 words.",
			},
			"recommendations": {
				Type:        SchemaArray,
				Items:       &Schema{Type: SchemaString},
				Description: "Actionable advice for the user (e.g., 'Do not click the link', 'Verify the sender').",
			},
			"transcript": {
				Type:        SchemaString,
				Description: "If audio/video was provided, provide the verbatim transcript.",
			},
			"ocrText": {
				Type:        SchemaString,
				Description: "If an image or document was provided, provide the raw text extracted via OCR.",
			},
		},
		Order:    []string{"riskScore", "verdict", "redFlags", "analysis", "recommendations", "transcript", "ocrText"},
		Required: []string{"riskScore", "verdict", "redFlags", "analysis", "recommendations"},
	}
}
