package mail

import "strings"

type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.From) == "" {
		return ErrInvalidMessage{Reason: "from is required"}
	}
	if len(cleanAddrs(m.To)) == 0 {
		return ErrInvalidMessage{Reason: "at least one recipient is required"}
	}
	if strings.TrimSpace(m.HTMLBody) == "" && strings.TrimSpace(m.TextBody) == "" {
		return ErrInvalidMessage{Reason: "either TextBody or HTMLBody is required"}
	}
	return nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
