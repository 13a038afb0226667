package remote

import (
	"strings"
	"unicode"
)

// Phrase lists for the certainty heuristic, applied to the lower-cased
// reason. Both English and Chinese replies are recognised.
var (
	hedgePhrases = []string{
		"not sure", "unsure", "uncertain", "not certain", "cannot be sure", "can't be sure",
		"cannot be certain", "can't be certain", "cannot determine", "can't determine",
		"cannot confirm", "can't confirm", "cannot tell", "can't tell", "don't know", "do not know",
		"不确定", "无法确定", "不能确定", "没法确定", "未能确定", "不能确认", "无法确认", "不敢确定", "无法断定",
		"也许", "或许", "可能", "如果",
	}
	// hedgeWords match whole English words only, so "if" does not fire
	// inside "different".
	hedgeWords = []string{
		"maybe", "perhaps", "might", "probably", "possibly", "likely", "if", "unless", "whether", "suppose",
	}
	denialPhrases = []string{
		"not red-eyed", "not red eyed", "my eyes are not red", "my eyes aren't red",
		"i am not red", "i'm not red", "don't think i am red", "don't think i'm red",
		"i am blue", "i'm blue", "my eyes are blue",
		"不是红眼", "不是红眼睛", "我不是红眼", "我不是红眼睛", "不认为自己是红眼", "不认为自己是红眼睛",
		"我不认为自己是红眼", "我不认为自己是红眼睛", "确定自己不是红眼", "确定自己不是红眼睛",
		"我确定自己不是红眼", "我确定自己不是红眼睛",
	}

	// A certain self-claim is a certainty marker directly followed by a
	// statement about the speaker's own eyes.
	certainClaims = append(
		pairPhrases(
			[]string{
				"i am certain ", "i'm certain ", "i am sure ", "i'm sure ", "i know ", "i now know ",
				"i can be sure ", "i am now certain ", "i'm now certain ",
			},
			[]string{"", "that "},
			[]string{
				"i am red-eyed", "i'm red-eyed", "i am red eyed", "i'm red eyed",
				"i am also red-eyed", "i'm also red-eyed", "i have red eyes",
				"my eyes are red", "my own eyes are red", "my eyes are also red",
			},
		),
		pairPhrases(
			[]string{"我确定", "能确定", "可以确定", "我能确定", "我已确定"},
			[]string{"自己是", "我是", "自己也是", "我也是"},
			[]string{"红眼"},
		)...,
	)
)

func pairPhrases(markers, joins, claims []string) []string {
	out := make([]string, 0, len(markers)*len(joins)*len(claims))
	for _, m := range markers {
		for _, j := range joins {
			for _, c := range claims {
				out = append(out, m+j+c)
			}
		}
	}
	return out
}

// impliesCertainRed reports whether reason claims, with certainty, that the
// speaker is red-eyed. Hedges and denials anywhere in the text win over any
// positive phrasing.
func impliesCertainRed(reason string) bool {
	r := strings.ToLower(strings.TrimSpace(reason))
	if r == "" {
		return false
	}
	if containsAny(r, hedgePhrases) || containsWord(r, hedgeWords) || containsAny(r, denialPhrases) {
		return false
	}
	return containsAny(r, certainClaims)
}

// enforceCertainty applies the puzzle rule that a villager certain of red
// eyes must leave. With a confidence value the threshold decides; without
// one the reason text does. It returns the final decision and whether it
// was forced.
func enforceCertainty(leave bool, confidence *float64, reason string, threshold float64) (bool, bool) {
	if leave {
		return true, false
	}
	if confidence != nil {
		if *confidence >= threshold {
			return true, true
		}
		return false, false
	}
	if impliesCertainRed(reason) {
		return true, true
	}
	return false, false
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsWord(s string, words []string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) || r > unicode.MaxLatin1
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
