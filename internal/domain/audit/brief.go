package audit

// Brief is a content outline for one topic.
type Brief struct {
	Topic    string
	Format   string
	Entities []string
	Outline  []string
	Notes    []string
}

// NewBrief builds the outline for topic in the format matching intent.
// entities are the concepts the page must cover; nil becomes empty.
func NewBrief(topic string, intent Intent, entities []string) Brief {
	if entities == nil {
		entities = []string{}
	}
	return Brief{
		Topic:    topic,
		Format:   ContentFormat(intent),
		Entities: entities,
		Outline: []string{
			"Introduction",
			topic + " overview",
			"Key entities and concepts",
			"Examples / Code snippets",
			"FAQ",
		},
		Notes: []string{
			"Use concise, semantically dense paragraphs",
			"Link to related entities in the site map",
		},
	}
}
