package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback language.Tag
		want     language.Tag
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ID")
				r.Header.Set("Accept-Language", "en-US")
			},
			fallback: language.English,
			want:     language.Indonesian,
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			fallback: language.Indonesian,
			want:     language.English,
		},
		{
			name: "accept-language id preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "id-ID,en;q=0.8")
			},
			fallback: language.English,
			want:     language.Indonesian,
		},
		{
			name: "unsupported language falls back",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ja-JP")
			},
			fallback: language.Indonesian,
			want:     language.Indonesian,
		},
		{
			name: "malformed x-locale ignored",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "!!")
				r.Header.Set("Accept-Language", "id")
			},
			fallback: language.English,
			want:     language.Indonesian,
		},
		{
			name:     "configured fallback",
			fallback: language.Indonesian,
			want:     language.Indonesian,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback)
			if got != tc.want {
				t.Fatalf("detectLocale() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatchLocale(t *testing.T) {
	if got := MatchLocale("id"); got != language.Indonesian {
		t.Fatalf("MatchLocale(id) = %v", got)
	}
	if got := MatchLocale(""); got != language.English {
		t.Fatalf("MatchLocale(\"\") = %v, want English", got)
	}
}

func TestI18NStoresLocale(t *testing.T) {
	var got language.Tag
	handler := I18N("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Locale", "id")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got != language.Indonesian {
		t.Fatalf("locale = %v, want Indonesian", got)
	}
	if rr.Header().Get("Content-Language") != "id" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != language.English {
		t.Fatalf("LocaleFromContext() default = %v, want English", got)
	}
	ctx = context.WithValue(ctx, LocaleKey, language.Indonesian)
	if got := LocaleFromContext(ctx); got != language.Indonesian {
		t.Fatalf("LocaleFromContext() with value = %v, want Indonesian", got)
	}
}
