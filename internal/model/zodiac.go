// Package model defines domain entities for the application.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sign is one of the twelve zodiac signs (rasi).
type Sign string

// The closed set of zodiac signs, in zodiacal order.
const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

// Signs lists every valid sign in zodiacal order.
var Signs = []Sign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

// signAbbreviations maps the three-letter forms some ephemeris engines emit.
var signAbbreviations = map[string]Sign{
	"ari": Aries,
	"tau": Taurus,
	"gem": Gemini,
	"can": Cancer,
	"leo": Leo,
	"vir": Virgo,
	"lib": Libra,
	"sco": Scorpio,
	"sag": Sagittarius,
	"cap": Capricorn,
	"aqu": Aquarius,
	"pis": Pisces,
}

// ParseSign normalizes s to a Sign.
// Matching is case-insensitive and accepts three-letter abbreviations.
// Returns false if s is not a zodiac sign.
func ParseSign(s string) (Sign, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}

	// Casers are stateful, so each call gets its own.
	candidate := Sign(cases.Title(language.English).String(strings.ToLower(trimmed)))
	if candidate.Valid() {
		return candidate, true
	}

	if sign, ok := signAbbreviations[strings.ToLower(trimmed)]; ok {
		return sign, true
	}

	return "", false
}

// Valid reports whether s is a member of the zodiac enumeration.
func (s Sign) Valid() bool {
	for _, sign := range Signs {
		if s == sign {
			return true
		}
	}
	return false
}

// String returns the English name of the sign.
func (s Sign) String() string {
	return string(s)
}
