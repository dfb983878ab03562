package render

import (
	"strings"
	"time"
)

// locale carries the pieces of date rendering that vary per language:
// long month names and the label shown for an ongoing position.
type locale struct {
	tag     string
	months  [12]string
	present string
}

// Supported language codes map onto fixed locales; anything else
// renders as en-US.
var locales = map[string]locale{
	"en": {
		tag: "en-US",
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		present: "Present",
	},
	"nl": {
		tag: "nl-NL",
		months: [12]string{"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december"},
		present: "Heden",
	},
	"es": {
		tag: "es-ES",
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		present: "Presente",
	},
	"pt": {
		tag: "pt-PT",
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		present: "Presente",
	},
}

func localeFor(lang string) locale {
	if loc, ok := locales[strings.ToLower(lang)]; ok {
		return loc
	}
	return locales["en"]
}

// FormatDate renders an ISO date string as long month name plus
// four-digit year in the given language. Malformed input is passed
// through verbatim rather than raising an error.
func FormatDate(iso, lang string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		// Also accept month precision, which some imports produce.
		t, err = time.Parse("2006-01", iso)
		if err != nil {
			return iso
		}
	}
	loc := localeFor(lang)
	return loc.months[t.Month()-1] + " " + t.Format("2006")
}

// FormatDateRange renders a start/end date pair. When current is true
// the end side is the localized "Present" label regardless of the
// stored end date.
func FormatDateRange(start, end string, current bool, lang string) string {
	from := FormatDate(start, lang)
	var to string
	if current {
		to = localeFor(lang).present
	} else {
		to = FormatDate(end, lang)
	}

	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return to
	case to == "":
		return from
	default:
		return from + " - " + to
	}
}

// FormatCurrentDate renders a wall-clock date for the cover letter
// header, long form: day, month name and year in locale order.
func FormatCurrentDate(now time.Time, lang string) string {
	loc := localeFor(lang)
	month := loc.months[now.Month()-1]
	if loc.tag == "en-US" {
		return month + " " + now.Format("2, 2006")
	}
	return now.Format("2") + " " + month + " " + now.Format("2006")
}
