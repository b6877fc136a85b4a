package locale

import "golang.org/x/text/language"

// Lang is one of the board's supported UI languages.
type Lang string

const (
	English            Lang = "en"
	Japanese           Lang = "ja"
	ChineseSimplified  Lang = "zh-CN"
	ChineseTraditional Lang = "zh-TW"
)

// All lists every supported language in drawer order.
var All = []Lang{English, Japanese, ChineseSimplified, ChineseTraditional}

var labels = map[Lang]string{
	English:            "English",
	Japanese:           "日本語",
	ChineseSimplified:  "简体中文",
	ChineseTraditional: "繁體中文",
}

// speech recognizers want a region-qualified tag
var recognitionTags = map[Lang]string{
	English:            "en-US",
	Japanese:           "ja-JP",
	ChineseSimplified:  "zh-CN",
	ChineseTraditional: "zh-TW",
}

func Parse(s string) (Lang, bool) {
	for _, l := range All {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func (l Lang) Valid() bool {
	_, ok := labels[l]
	return ok
}

// Label is the language's name in its own script.
func (l Lang) Label() string { return labels[l] }

// Locale returns the BCP 47 tag used for speech recognition.
func (l Lang) Locale() string { return recognitionTags[l] }

func (l Lang) Tag() language.Tag { return language.Make(string(l)) }

// Next cycles through All, wrapping at the end.
func (l Lang) Next() Lang {
	for i, c := range All {
		if c == l {
			return All[(i+1)%len(All)]
		}
	}
	return English
}
