package contact

import (
	"regexp"
	"strconv"
	"strings"
)

// Sellers hide phone numbers from naive scrapers by spelling digits out
// ("nine zero eight"), using circled/keycap glyphs, or swapping the
// letter o for 0. Normalization undoes all of that before any digit-run
// judgment happens.

var wordDigits = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

var teenWords = map[string]int{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var (
	// tens with an optional unit: "sixty-four" and "sixty four" resolve
	// to 64 as one token, never "6ty-4our".
	tensRe = regexp.MustCompile(
		`(?i)\b(twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)(?:[\s-](zero|one|two|three|four|five|six|seven|eight|nine))?\b`)
	teensRe = regexp.MustCompile(
		`(?i)\b(ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen)\b`)
	digitWordRe = regexp.MustCompile(
		`(?i)\b(zero|one|two|three|four|five|six|seven|eight|nine)\b`)

	// o adjacent to a digit (possibly across one space) reads as 0.
	// Both patterns refuse a letter on the far side so the o in ordinary
	// words ("auto 4") is never touched. The separating space is
	// captured and kept, so "o9 o8" stays two tokens.
	oAfterDigitRe  = regexp.MustCompile(`(\d)( ?)[oO]($|[^A-Za-z])`)
	oBeforeDigitRe = regexp.MustCompile(`(^|[^A-Za-z])[oO]( ?)(\d)`)

	separatorRe  = regexp.MustCompile(`[().,/:]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonDigitRe   = regexp.MustCompile(`\D+`)
)

// emojiDigits maps circled, parenthesized, full-stop, negative-circled
// and fullwidth digit glyphs back to ASCII.
var emojiDigits = map[rune]rune{
	'⓪': '0', '⓿': '0', '０': '0',
	'①': '1', '⑴': '1', '⒈': '1', '❶': '1', '１': '1',
	'②': '2', '⑵': '2', '⒉': '2', '❷': '2', '２': '2',
	'③': '3', '⑶': '3', '⒊': '3', '❸': '3', '３': '3',
	'④': '4', '⑷': '4', '⒋': '4', '❹': '4', '４': '4',
	'⑤': '5', '⑸': '5', '⒌': '5', '❺': '5', '５': '5',
	'⑥': '6', '⑹': '6', '⒍': '6', '❻': '6', '６': '6',
	'⑦': '7', '⑺': '7', '⒎': '7', '❼': '7', '７': '7',
	'⑧': '8', '⑻': '8', '⒏': '8', '❽': '8', '８': '8',
	'⑨': '9', '⑼': '9', '⒐': '9', '❾': '9', '９': '9',
}

// DeobfuscateDigits rewrites disguised digit representations in text to
// plain digits and squeezes separator noise to single spaces. It is pure
// and total: any input yields a string, possibly empty.
func DeobfuscateDigits(text string) string {
	if text == "" {
		return ""
	}

	s := tensRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := regexp.MustCompile(`[\s-]`).Split(strings.ToLower(m), 2)
		n := tensWords[parts[0]]
		if len(parts) == 2 {
			if unit, ok := wordDigits[parts[1]]; ok {
				u, _ := strconv.Atoi(unit)
				n += u
			}
		}
		return strconv.Itoa(n)
	})
	s = teensRe.ReplaceAllStringFunc(s, func(m string) string {
		return strconv.Itoa(teenWords[strings.ToLower(m)])
	})
	s = digitWordRe.ReplaceAllStringFunc(s, func(m string) string {
		return wordDigits[strings.ToLower(m)]
	})

	s = strings.Map(func(r rune) rune {
		if d, ok := emojiDigits[r]; ok {
			return d
		}
		// keycap sequences (1️⃣) leave their combining marks
		// behind once the base digit is kept
		if r == '️' || r == '⃣' {
			return -1
		}
		return r
	}, s)

	// chains like 9o8o7 need repeated passes
	for {
		next := oAfterDigitRe.ReplaceAllString(s, "${1}${2}0${3}")
		next = oBeforeDigitRe.ReplaceAllString(next, "${1}0${2}${3}")
		if next == s {
			break
		}
		s = next
	}

	s = separatorRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(text string) string {
	return nonDigitRe.ReplaceAllString(text, "")
}

// FormatPhone groups a digit string the conventional US way. Runs longer
// than 11 digits come back untouched.
func FormatPhone(digits string) string {
	switch {
	case len(digits) == 7:
		return digits[:3] + "-" + digits[3:]
	case len(digits) == 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return digits[:1] + "-" + digits[1:4] + "-" + digits[4:7] + "-" + digits[7:]
	default:
		return digits
	}
}
