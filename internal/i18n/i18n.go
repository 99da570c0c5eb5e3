// Package i18n localizes the user-facing notices and prices the service
// returns. English and Indonesian are supported; anything else falls back to
// English.
package i18n

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Notice keys. The store uses the same strings when it reports a failure.
const (
	KeyCheckoutSignIn = "checkout_sign_in"
	KeyEnrollSignIn   = "enroll_sign_in"
	KeyAdminOnly      = "admin_only"
	KeyCourseNotFound = "course_not_found"
	KeyCoursesSignIn  = "courses_sign_in"
	KeyTutorOffline   = "tutor_offline"
	KeyInvalidRequest = "invalid_request"
	KeyFillAllFields  = "fill_all_fields"
)

var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyCheckoutSignIn: "Please sign in to complete your purchase.",
		KeyEnrollSignIn:   "Please sign in to enroll in this course.",
		KeyAdminOnly:      "Only administrators can manage courses.",
		KeyCourseNotFound: "Course not found. Showing your courses instead.",
		KeyCoursesSignIn:  "Please sign in to view your courses.",
		KeyTutorOffline:   "The AI tutor is not configured right now.",
		KeyInvalidRequest: "The request could not be understood.",
		KeyFillAllFields:  "Please fill all fields",
	},
	language.Indonesian: {
		KeyCheckoutSignIn: "Silakan masuk untuk menyelesaikan pembelian Anda.",
		KeyEnrollSignIn:   "Silakan masuk untuk mendaftar di kursus ini.",
		KeyAdminOnly:      "Hanya administrator yang dapat mengelola kursus.",
		KeyCourseNotFound: "Kursus tidak ditemukan. Menampilkan kursus Anda.",
		KeyCoursesSignIn:  "Silakan masuk untuk melihat kursus Anda.",
		KeyTutorOffline:   "Tutor AI belum dikonfigurasi saat ini.",
		KeyInvalidRequest: "Permintaan tidak dapat dipahami.",
		KeyFillAllFields:  "Harap isi semua kolom",
	},
}

var builder = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Match picks the best supported locale for the given preferences, which
// may be BCP 47 tags or whole Accept-Language headers. An empty result means
// nothing matched with any confidence.
func Match(prefs ...string) string {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return base(supported[idx])
}

// Normalize maps a locale string to a supported one, defaulting to "en".
func Normalize(locale string) string {
	if m := Match(locale); m != "" {
		return m
	}
	return "en"
}

// ForCountry returns the locale implied by an ISO country code.
func ForCountry(country string) string {
	if strings.EqualFold(strings.TrimSpace(country), "ID") {
		return "id"
	}
	return "en"
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}

func tagFor(locale string) language.Tag {
	if Normalize(locale) == "id" {
		return language.Indonesian
	}
	return language.English
}

func printer(locale string) *message.Printer {
	return message.NewPrinter(tagFor(locale), message.Catalog(builder))
}

// Notice returns the localized text for key. Unknown keys are returned as is.
func Notice(locale, key string) string {
	if _, ok := messages[language.English][key]; !ok {
		return key
	}
	return printer(locale).Sprintf(key)
}

// Currency is the unit every catalog price is expressed in.
var Currency = currency.USD

// FormatPrice renders amount in the catalog currency with the locale's
// digit grouping and decimal separator.
func FormatPrice(locale string, amount float64) string {
	return "$" + printer(locale).Sprintf("%.2f", amount)
}
