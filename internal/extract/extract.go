package extract

// Mode selects how Extract treats values that do not match the schema.
type Mode int

const (
	// Permissive fills incompatible optional fields with their default,
	// coerces "true"/"false" strings to booleans and maps unknown enum tags to
	// the field's fallback. Required fields are always enforced.
	Permissive Mode = iota
	// Strict rejects any incompatible value and validates the normalized
	// record against the schema's JSON Schema document.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// ParseMode maps "strict" to Strict and anything else to Permissive.
func ParseMode(s string) Mode {
	if s == "strict" {
		return Strict
	}
	return Permissive
}

type options struct {
	mode  Mode
	notes *[]string
}

// Option configures a single Extract call.
type Option func(*options)

// WithMode sets the strictness policy. The default is Permissive.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithStrict is shorthand for WithMode(Strict) when strict is true.
func WithStrict(strict bool) Option {
	return func(o *options) {
		if strict {
			o.mode = Strict
		}
	}
}

// WithNotes collects a line for every coercion, dropped value or default
// substituted while normalizing.
func WithNotes(notes *[]string) Option {
	return func(o *options) { o.notes = notes }
}

// Extract recovers a record conforming to schema from raw model output.
//
// The returned error is always an *Error. Extract keeps no state and is safe
// for concurrent use.
func Extract(raw string, schema *Schema, opts ...Option) (Record, error) {
	o := options{mode: Permissive}
	for _, opt := range opts {
		opt(&o)
	}

	obj, err := locateObject(StripFences(raw))
	if err != nil {
		return nil, err
	}

	n := &normalizer{mode: o.mode}
	rec, e := n.object("", schema.Fields, obj)
	if e != nil {
		return nil, e
	}

	if o.mode == Strict {
		if err := schema.validate(rec); err != nil {
			return nil, err
		}
	}

	if o.notes != nil {
		*o.notes = append(*o.notes, n.notes...)
	}
	return rec, nil
}

// ExtractObject is Extract for callers that only need a JSON object out of
// raw text with no schema applied. Numbers are decoded as json.Number.
func ExtractObject(raw string) (map[string]any, error) {
	return locateObject(StripFences(raw))
}
