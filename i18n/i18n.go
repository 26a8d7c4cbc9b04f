// Package i18n holds the fr/en message catalogs and language helpers.
package i18n

import (
	"context"
	"strings"
)

const (
	LangFR      = "fr"
	LangEN      = "en"
	DefaultLang = LangFR
)

type ctxKey struct{}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// Normalize maps any language tag to a supported language.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if base, _, ok := strings.Cut(lang, "-"); ok {
		lang = base
	}
	if Supported(lang) {
		return lang
	}
	return DefaultLang
}

// DetectLanguage picks a language from an Accept-Language header.
// Only the first preference is considered.
func DetectLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first, _, _ = strings.Cut(first, ";")
	return Normalize(first)
}

// T translates code, falling back to French and then to the code itself.
func T(lang, code string) string {
	if msg, ok := catalogs[Normalize(lang)][code]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Normalize(lang))
}

// LangFromContext returns the request language, or the default.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// StatusLabel returns the display label of a company status.
func StatusLabel(lang, status string) string { return T(lang, "status."+status) }

// StructureLabel returns the short display name of a legal structure.
func StructureLabel(lang, structure string) string { return T(lang, "structure."+structure) }

// StructureFullName returns the long display name of a legal structure.
func StructureFullName(lang, structure string) string {
	return T(lang, "structure."+structure+".full")
}

// DomainLabel returns the display label of an activity domain.
func DomainLabel(lang, domain string) string { return T(lang, "domain."+domain) }

// DocumentLabel returns the display label of a required document type.
func DocumentLabel(lang, docType string) string { return T(lang, "document."+docType) }

// Localize translates every violation code in violations.
func Localize(lang string, violations map[string]string) map[string]string {
	out := make(map[string]string, len(violations))
	for field, code := range violations {
		out[field] = T(lang, code)
	}
	return out
}
