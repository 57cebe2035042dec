package interfaces

// LinkResolver builds canonical public URLs for stored records. Kind is one
// of "event", "job" or "article".
type LinkResolver interface {
	DetailURL(kind string, slug string) (string, error)
}
