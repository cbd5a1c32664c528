package weighting

// CatalogField is one weightable field with its default weight.
type CatalogField struct {
	Key     string      `json:"key" yaml:"key"`
	Label   string      `json:"label" yaml:"label"`
	Default FieldWeight `json:"default" yaml:"-"`
}

// Group is an ordered set of fields shown together (attributes, taxonomies, metadata).
type Group struct {
	Key    string         `json:"key" yaml:"key"`
	Label  string         `json:"label" yaml:"label"`
	Fields []CatalogField `json:"fields" yaml:"fields"`
}

// PostType lists the weightable fields of one post type.
type PostType struct {
	Label  string  `json:"label" yaml:"label"`
	Groups []Group `json:"groups" yaml:"groups"`
}

// Catalog is the set of weightable fields indexed by post type.
type Catalog map[string]PostType

// Has reports whether the post type is weightable.
func (c Catalog) Has(postType string) bool {
	_, ok := c[postType]
	return ok
}

// Defaults returns the default weights of a post type.
func (c Catalog) Defaults(postType string) Fields {
	def, ok := c[postType]
	if !ok {
		return nil
	}
	out := make(Fields)
	for _, g := range def.Groups {
		for _, f := range g.Fields {
			out[f.Key] = f.Default
		}
	}
	return out
}

// DefaultConfiguration returns catalog defaults for every post type.
func (c Catalog) DefaultConfiguration() Configuration {
	return Configuration(nil).Normalize(c)
}

var (
	enabledOne = FieldWeight{Enabled: true, Weight: 1}
	disabled   = FieldWeight{Enabled: false, Weight: 0}
)

// DefaultPostType is the stock field set for a post type: title, content,
// excerpt and author attributes plus the given taxonomies.
func DefaultPostType(label string, taxonomies ...string) PostType {
	pt := PostType{
		Label: label,
		Groups: []Group{{
			Key:   "attributes",
			Label: "Attributes",
			Fields: []CatalogField{
				{Key: "post_title", Label: "Title", Default: enabledOne},
				{Key: "post_content", Label: "Content", Default: enabledOne},
				{Key: "post_excerpt", Label: "Excerpt", Default: enabledOne},
				{Key: "author_name", Label: "Author", Default: disabled},
			},
		}},
	}
	if len(taxonomies) > 0 {
		g := Group{Key: "taxonomies", Label: "Taxonomies"}
		for _, tax := range taxonomies {
			g.Fields = append(g.Fields, CatalogField{
				Key:     "terms." + tax + ".name",
				Label:   tax,
				Default: enabledOne,
			})
		}
		pt.Groups = append(pt.Groups, g)
	}
	return pt
}

// WithMeta appends a metadata group. Meta fields start disabled; they only
// matter when the meta mode is manual.
func (p PostType) WithMeta(keys ...string) PostType {
	if len(keys) == 0 {
		return p
	}
	g := Group{Key: "metadata", Label: "Metadata"}
	for _, k := range keys {
		g.Fields = append(g.Fields, CatalogField{
			Key:     "meta." + k + ".value",
			Label:   k,
			Default: disabled,
		})
	}
	p.Groups = append(p.Groups, g)
	return p
}
