package mailer

import "fmt"

// Tags are provider tags. Presence-only tags use struct{}{} as value.
type Tags map[string]any

// SimpleTags creates presence-only tags.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and address as "Name <email>".
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully prepared message.
type Email struct {
	Headers map[string]string
	Tags    Tags
	Subject string
	HTML    string
	Text    string
	// From overrides the sender's default address.
	From    string
	ReplyTo string
	To      []string
	CC      []string
	BCC     []string
}
