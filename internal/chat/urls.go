package chat

import "regexp"

var urlPattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%.+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([a-zA-Z0-9()@:%.~#?&/=]*)`)

// ExtractURLs returns the first URL found in text, or an empty slice.
func ExtractURLs(text string) []string {
	if m := urlPattern.FindString(text); m != "" {
		return []string{m}
	}
	return []string{}
}
