package tag

// Factory builds validated tags from raw input:
// Parse -> Normalize -> Validate -> Identity.
type Factory struct {
	validator Validator
}

// NewFactory returns a Factory validating with v.
func NewFactory(v Validator) *Factory {
	return &Factory{validator: v}
}

// New builds a single tag from raw text. It returns *EmptyTagError when the
// text normalizes to nothing and *InvalidTagError when validation fails.
func (f *Factory) New(raw string) (Tag, error) {
	value := Normalize(raw)
	if value == "" {
		return Tag{}, &EmptyTagError{Raw: raw}
	}

	result := f.validator.Validate(value)
	if !result.Valid {
		return Tag{}, &InvalidTagError{
			Raw:     raw,
			Value:   value,
			Reasons: result.Violations,
		}
	}

	return FromValue(value), nil
}

// FromContent parses content into tokens and builds a tag for each one,
// failing on the first invalid token. Repeated tokens collapse into one
// member of the returned Set.
func (f *Factory) FromContent(content string) (Set, error) {
	tokens := Parse(content)
	tags := make([]Tag, 0, len(tokens))
	for _, token := range tokens {
		t, err := f.New(token)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return NewSet(tags...), nil
}
