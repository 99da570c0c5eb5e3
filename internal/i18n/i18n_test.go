package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"academy/internal/store"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{name: "indonesian header", prefs: []string{"id-ID,en;q=0.8"}, want: "id"},
		{name: "english region", prefs: []string{"en-GB"}, want: "en"},
		{name: "first usable preference", prefs: []string{"", "id"}, want: "id"},
		{name: "nothing given", prefs: nil, want: ""},
		{name: "garbage", prefs: []string{"!!"}, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.prefs...))
		})
	}
}

func TestNormalizeAndCountry(t *testing.T) {
	assert.Equal(t, "id", Normalize("ID"))
	assert.Equal(t, "en", Normalize(""))
	assert.Equal(t, "id", ForCountry("id"))
	assert.Equal(t, "en", ForCountry("US"))
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "Please sign in to complete your purchase.", Notice("en", KeyCheckoutSignIn))
	assert.Equal(t, "Silakan masuk untuk mendaftar di kursus ini.", Notice("id", KeyEnrollSignIn))
	assert.Equal(t, "Only administrators can manage courses.", Notice("fr", KeyAdminOnly))
	assert.Equal(t, "mystery", Notice("en", "mystery"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$49.99", FormatPrice("en", 49.99))
	assert.Equal(t, "$0.00", FormatPrice("en", 0))
	assert.Contains(t, FormatPrice("id", 49.99), "49")
	assert.Equal(t, "USD", Currency.String())
}

func TestStoreNoticesAreTranslated(t *testing.T) {
	for _, key := range []string{store.NoticeCheckoutSignIn, store.NoticeEnrollSignIn, store.NoticeAdminOnly} {
		for _, locale := range []string{"en", "id"} {
			assert.NotEqual(t, key, Notice(locale, key), "%s/%s", locale, key)
		}
	}
}
