package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type lookupError string

func (e lookupError) Error() string { return string(e) }

func newLocaleRequest(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.4:80"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale beats country", headers: map[string]string{"X-Locale": "ID"}, country: "US", want: "id"},
		{name: "x-locale with region", headers: map[string]string{"X-Locale": "id-ID"}, want: "id"},
		{name: "invalid x-locale is en", headers: map[string]string{"X-Locale": "not a locale!", "Accept-Language": "id"}, want: "en"},
		{name: "weights beat order", headers: map[string]string{"Accept-Language": "en;q=0.2, id;q=0.9"}, want: "id"},
		{name: "lower weighted id loses", headers: map[string]string{"Accept-Language": "id;q=0.1, en-GB;q=0.7"}, want: "en"},
		{name: "unsupported top choice is en", headers: map[string]string{"Accept-Language": "fr-FR, id;q=0.5"}, want: "en"},
		{name: "implicit weight is one", headers: map[string]string{"Accept-Language": "id-ID,en;q=0.8"}, want: "id"},
		{name: "indonesian country", country: "ID", want: "id"},
		{name: "other country", country: "SG", fallback: "id", want: "en"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "no hints", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := detectLocale(newLocaleRequest(tc.headers), tc.fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleRegion(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{accept: "en-GB", want: "GB"},
		{accept: "fr;q=0.9, en-GB;q=0.5", want: "GB"},
		{accept: "en-US;q=0.3, en-AU;q=0.8", want: "AU"},
		{accept: "id", want: ""},
		{accept: "", want: ""},
	}
	for _, tc := range tests {
		if got := localeRegion(tc.accept); got != tc.want {
			t.Fatalf("localeRegion(%q) = %q, want %q", tc.accept, got, tc.want)
		}
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		resolver CountryLookup
		want     string
	}{
		{
			name:    "edge header first",
			headers: map[string]string{"CF-IPCountry": "id", "X-Locale": "en-AU"},
			want:    "ID",
		},
		{
			name:    "x-locale region",
			headers: map[string]string{"X-Locale": "en-AU", "Accept-Language": "en-GB"},
			want:    "AU",
		},
		{
			name:    "region from lower weighted tag",
			headers: map[string]string{"Accept-Language": "fr;q=0.9, en-NZ;q=0.4"},
			want:    "NZ",
		},
		{
			name:    "bare indonesian implies ID",
			headers: map[string]string{"Accept-Language": "en;q=0.1, id;q=0.8"},
			want:    "ID",
		},
		{
			name:    "lookup uses connection address",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.77"},
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("lookup got %s, want the connection address", ip)
				}
				return "my", nil
			},
			want: "MY",
		},
		{
			name: "lookup failure",
			resolver: func(ip string) (string, error) {
				return "", lookupError("no record")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCountry(newLocaleRequest(tc.headers), tc.resolver); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	var locale, country string
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), newLocaleRequest(map[string]string{"Accept-Language": "en;q=0.3, id-ID;q=0.9"}))
	if locale != "id" || country != "ID" {
		t.Fatalf("locale %q country %q, want id ID", locale, country)
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "id")
	if got := LocaleFromContext(ctx); got != "id" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "id")
	}
}
