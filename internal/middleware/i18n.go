package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"videoprompt/internal/domain"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

var matcher = language.NewMatcher(domain.SupportedLanguages)

// I18N resolves the response language from X-Locale, then Accept-Language,
// then defaultLocale.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	fallback := MatchLocale(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := detectLocale(r, fallback)
			w.Header().Set("Content-Language", tag.String())
			ctx := context.WithValue(r.Context(), LocaleKey, tag)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback language.Tag) language.Tag {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, ok := match(v); ok {
			return tag
		}
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		if tag, ok := match(v); ok {
			return tag
		}
	}
	return fallback
}

// MatchLocale maps a locale string onto a supported language, defaulting to
// English.
func MatchLocale(locale string) language.Tag {
	if tag, ok := match(locale); ok {
		return tag
	}
	return domain.SupportedLanguages[0]
}

func match(accept string) (language.Tag, bool) {
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return language.Und, false
	}
	_, idx, confidence := matcher.Match(desired...)
	if confidence == language.No {
		return language.Und, false
	}
	return domain.SupportedLanguages[idx], true
}

func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(LocaleKey).(language.Tag); ok {
		return v
	}
	return domain.SupportedLanguages[0]
}
