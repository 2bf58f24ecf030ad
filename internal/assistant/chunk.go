package assistant

import (
	"strings"
	"unicode/utf8"
)

var separators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitText breaks text into chunks of at most size runes, preferring
// paragraph, then line, then sentence, then word boundaries. Consecutive
// chunks share up to overlap runes.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return splitText(text, separators, size, overlap)
}

func splitText(text string, seps []string, size, overlap int) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = strings.Split(text, "")
	} else {
		splits = strings.Split(text, sep)
	}

	var out, good []string
	for _, s := range splits {
		if utf8.RuneCountInString(s) <= size {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			out = append(out, merge(good, sep, size, overlap)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, s)
		} else {
			out = append(out, splitText(s, rest, size, overlap)...)
		}
	}
	if len(good) > 0 {
		out = append(out, merge(good, sep, size, overlap)...)
	}
	return out
}

func merge(splits []string, sep string, size, overlap int) []string {
	sepLen := utf8.RuneCountInString(sep)
	var docs, cur []string
	total := 0
	joinCost := func() int {
		if len(cur) > 0 {
			return sepLen
		}
		return 0
	}
	for _, d := range splits {
		l := utf8.RuneCountInString(d)
		if total+l+joinCost() > size && len(cur) > 0 {
			if doc := strings.TrimSpace(strings.Join(cur, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for total > overlap || (total > 0 && total+l+joinCost() > size) {
				drop := utf8.RuneCountInString(cur[0])
				if len(cur) > 1 {
					drop += sepLen
				}
				total -= drop
				cur = cur[1:]
			}
		}
		total += l + joinCost()
		cur = append(cur, d)
	}
	if doc := strings.TrimSpace(strings.Join(cur, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
