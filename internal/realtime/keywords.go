package realtime

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultNewsTopic is searched when an utterance carries no usable keyword
const DefaultNewsTopic = "한국"

var newsStopwords = map[string]bool{
	"뉴스": true, "최신": true, "오늘": true, "어제": true,
	"알려줘": true, "알려주세요": true, "검색": true, "찾아줘": true,
}

var wordPattern = regexp.MustCompile(`[가-힣a-zA-Z]+`)

// ExtractNewsKeywords picks the first two Hangul or Latin words of at least
// two characters that are not news stopwords, or DefaultNewsTopic.
func ExtractNewsKeywords(utterance string) string {
	var keywords []string
	for _, word := range wordPattern.FindAllString(utterance, -1) {
		if newsStopwords[word] || utf8.RuneCountInString(word) < 2 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 2 {
			break
		}
	}
	if len(keywords) == 0 {
		return DefaultNewsTopic
	}
	return strings.Join(keywords, " ")
}
