package markdown

import (
	"strconv"
	"unicode"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// CountWords counts whitespace separated words. Each CJK ideograph counts as a word.
func CountWords(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r):
			words++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	return words
}

// ReadingTime formats the estimated reading time of text as "N min read",
// rounding up and never reporting less than one minute.
func ReadingTime(text string) string {
	minutes := (CountWords(text) + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min read"
}
