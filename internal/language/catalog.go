// Package language provides the static catalog of supported languages.
package language

import "sort"

// Language pairs an ISO-style code with its English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var names = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"tr": "Turkish",
	"ar": "Arabic",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"vi": "Vietnamese",
	"th": "Thai",
	"id": "Indonesian",
	"sv": "Swedish",
	"da": "Danish",
	"no": "Norwegian",
	"fi": "Finnish",
	"cs": "Czech",
	"el": "Greek",
	"he": "Hebrew",
	"ro": "Romanian",
	"hu": "Hungarian",
}

// NameFor returns the display name for a language code. Unknown codes are
// returned unchanged so instruction prompts stay usable with free-form input.
func NameFor(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// IsSupported reports whether the code is in the catalog.
func IsSupported(code string) bool {
	_, ok := names[code]
	return ok
}

// All returns the catalog sorted by code.
func All() []Language {
	out := make([]Language, 0, len(names))
	for code, name := range names {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
