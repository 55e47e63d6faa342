package speech

import (
	"sort"

	"golang.org/x/text/language"
)

// Voice is one entry of the fixed synthesis catalog. Token is the value
// accepted over the API and config file; Tag is the BCP-47 language of the
// generated speech.
type Voice struct {
	Token  string
	Tag    language.Tag
	Gender string
}

// DefaultVoice is used when a request does not name a voice.
const DefaultVoice = "zh-female"

var catalog = map[string]Voice{
	"zh-female":  {Token: "zh-female", Tag: language.MustParse("zh-Hans"), Gender: "female"},
	"zh-male":    {Token: "zh-male", Tag: language.MustParse("zh-Hans"), Gender: "male"},
	"en-female":  {Token: "en-female", Tag: language.MustParse("en-US"), Gender: "female"},
	"en-male":    {Token: "en-male", Tag: language.MustParse("en-US"), Gender: "male"},
	"ja-male":    {Token: "ja-male", Tag: language.MustParse("ja-JP"), Gender: "male"},
	"yue-female": {Token: "yue-female", Tag: language.MustParse("yue-HK"), Gender: "female"},
	"ko-female":  {Token: "ko-female", Tag: language.MustParse("ko-KR"), Gender: "female"},
}

// LookupVoice resolves a catalog token. An empty token resolves to
// DefaultVoice.
func LookupVoice(token string) (Voice, bool) {
	if token == "" {
		token = DefaultVoice
	}
	voice, ok := catalog[token]
	return voice, ok
}

// Voices lists the catalog sorted by token.
func Voices() []Voice {
	out := make([]Voice, 0, len(catalog))
	for _, voice := range catalog {
		out = append(out, voice)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}
