package model

import "fmt"

// ParseUser converts a users document into a User.
func ParseUser(doc *Document) (*User, error) {
	if doc == nil {
		return nil, &SchemaError{Collection: "users", Reason: "document is nil"}
	}

	p := parser{doc: doc}
	user := &User{
		ID:        doc.ID,
		AccountID: p.requiredString("accountId"),
		Email:     p.requiredString("email"),
		Username:  p.requiredString("username"),
		Avatar:    p.optionalString("avatar"),
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	user.SavedVideos = p.savedRefs("savedVideos")

	if p.err != nil {
		return nil, p.err
	}
	return user, nil
}

// ParsePost converts a videos document into a Post.
func ParsePost(doc *Document) (*Post, error) {
	if doc == nil {
		return nil, &SchemaError{Collection: "videos", Reason: "document is nil"}
	}

	p := parser{doc: doc}
	post := &Post{
		ID:        doc.ID,
		Title:     p.requiredString("title"),
		Thumbnail: p.requiredString("thumbnail"),
		Video:     p.requiredString("video"),
		Prompt:    p.optionalString("prompt"),
		CreatorID: p.reference("users"),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if p.err != nil {
		return nil, p.err
	}
	return post, nil
}

// ParsePosts parses every document, failing on the first malformed one.
func ParsePosts(docs []*Document) ([]*Post, error) {
	posts := make([]*Post, 0, len(docs))
	for _, doc := range docs {
		post, err := ParsePost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// parser records the first schema violation and turns later lookups into no-ops.
type parser struct {
	doc *Document
	err error
}

func (p *parser) fail(field, reason string) {
	if p.err == nil {
		p.err = &SchemaError{Collection: p.doc.Collection, ID: p.doc.ID, Field: field, Reason: reason}
	}
}

func (p *parser) requiredString(field string) string {
	v, ok := p.doc.Data[field]
	if !ok || v == nil {
		p.fail(field, "is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.fail(field, fmt.Sprintf("must be a string, got %T", v))
		return ""
	}
	if s == "" {
		p.fail(field, "is empty")
	}
	return s
}

func (p *parser) optionalString(field string) string {
	v, ok := p.doc.Data[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.fail(field, fmt.Sprintf("must be a string, got %T", v))
		return ""
	}
	return s
}

// reference accepts either a bare id or an expanded relationship object carrying $id.
func (p *parser) reference(field string) string {
	v, ok := p.doc.Data[field]
	if !ok || v == nil {
		return ""
	}
	id, ok := refID(v)
	if !ok {
		p.fail(field, fmt.Sprintf("must be an id or an object with %s, got %T", AttrID, v))
	}
	return id
}

func (p *parser) savedRefs(field string) []SavedVideoRef {
	refs := []SavedVideoRef{}
	v, ok := p.doc.Data[field]
	if !ok || v == nil {
		return refs
	}

	switch list := v.(type) {
	case []SavedVideoRef:
		return append(refs, list...)
	case []any:
		for i, item := range list {
			id, ok := refID(item)
			if !ok || id == "" {
				p.fail(fmt.Sprintf("%s[%d]", field, i), "must reference a video")
				return nil
			}
			refs = append(refs, SavedVideoRef{ID: id})
		}
		return refs
	case []map[string]any:
		for i, item := range list {
			id, ok := refID(item)
			if !ok || id == "" {
				p.fail(fmt.Sprintf("%s[%d]", field, i), "must reference a video")
				return nil
			}
			refs = append(refs, SavedVideoRef{ID: id})
		}
		return refs
	default:
		p.fail(field, fmt.Sprintf("must be a list, got %T", v))
		return nil
	}
}

func refID(v any) (string, bool) {
	switch ref := v.(type) {
	case string:
		return ref, true
	case map[string]any:
		id, ok := ref[AttrID].(string)
		return id, ok
	case SavedVideoRef:
		return ref.ID, true
	default:
		return "", false
	}
}
