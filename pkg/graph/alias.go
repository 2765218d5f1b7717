package graph

import "strings"

// AliasResolver maps an arbitrary token (raw id, e-mail, name) to a
// canonical entity id. ok is false when the token is unknown.
type AliasResolver interface {
	Resolve(token string) (id string, ok bool)
}

// AliasTable is a map-backed resolver with a case-insensitive shadow index.
type AliasTable struct {
	exact   map[string]string
	lowered map[string]string
}

// NewAliasTable registers every entity's id and label, then the extra
// aliases. Later registrations win on conflict.
func NewAliasTable(entities []Entity, extra map[string]string) *AliasTable {
	t := &AliasTable{
		exact:   make(map[string]string, len(entities)*2+len(extra)),
		lowered: make(map[string]string, len(entities)*2+len(extra)),
	}
	for _, e := range entities {
		if e.Label != "" {
			t.Add(e.Label, e.ID)
		}
	}
	for _, e := range entities {
		t.Add(e.ID, e.ID)
	}
	for token, id := range extra {
		t.Add(token, id)
	}
	return t
}

// Add registers token as an alias of id.
func (t *AliasTable) Add(token, id string) {
	token = strings.TrimSpace(token)
	if token == "" || id == "" {
		return
	}
	t.exact[token] = id
	t.lowered[strings.ToLower(token)] = id
}

// Len is the number of exact aliases.
func (t *AliasTable) Len() int { return len(t.exact) }

// Resolve tries an exact match, then a lowercase match.
func (t *AliasTable) Resolve(token string) (string, bool) {
	if t == nil {
		return "", false
	}
	if id, ok := t.exact[token]; ok {
		return id, true
	}
	if id, ok := t.lowered[strings.ToLower(strings.TrimSpace(token))]; ok {
		return id, true
	}
	return "", false
}

// identityResolver resolves nothing, so every token passes through.
type identityResolver struct{}

func (identityResolver) Resolve(string) (string, bool) { return "", false }

// Identity returns a resolver under which every token is its own id.
func Identity() AliasResolver { return identityResolver{} }

// resolveToken applies resolver and falls back to the token itself.
func resolveToken(r AliasResolver, token string) string {
	if r != nil {
		if id, ok := r.Resolve(token); ok {
			return id
		}
	}
	return token
}
