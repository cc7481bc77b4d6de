package types

// Link relates a resolved entity to another resource.
type Link struct {
	Rel  string `cramberry:"1"`
	Href string `cramberry:"2"`
}

// Outcome is the result of resolving an Identifier.
//
// When Found is false the entity is unknown and Status and Links
// are empty. Transaction outcomes carry a "tx" link; block
// outcomes carry none until a blocks resource exists.
type Outcome struct {
	Found  bool   `cramberry:"1"`
	Status Status `cramberry:"2"`
	Links  []Link `cramberry:"3"`
}

// NotFound returns the outcome for an unknown entity.
func NotFound() Outcome { return Outcome{} }

// Link returns the href for rel, if present.
func (o Outcome) Link(rel string) (string, bool) {
	for _, l := range o.Links {
		if l.Rel == rel {
			return l.Href, true
		}
	}
	return "", false
}

// LinkMap returns the links keyed by relation, or nil if there are none.
func (o Outcome) LinkMap() map[string]string {
	if len(o.Links) == 0 {
		return nil
	}
	m := make(map[string]string, len(o.Links))
	for _, l := range o.Links {
		m[l.Rel] = l.Href
	}
	return m
}
