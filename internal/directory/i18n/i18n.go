// Package i18n provides the two UI languages and the persisted language
// choice. Components subscribe to be told when the language changes.
package i18n

import (
	"context"
	"fmt"
	"strings"
	"sync"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/storage"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Lang is a supported UI language tag.
type Lang string

const (
	Turkish Lang = "tr"
	English Lang = "en"
)

// DefaultLang is used when nothing has been chosen yet.
const DefaultLang = Turkish

var (
	supported = []Lang{Turkish, English}
	matcher   = language.NewMatcher([]language.Tag{language.Turkish, language.English})
)

// Supported lists the available languages.
func Supported() []Lang {
	return append([]Lang(nil), supported...)
}

// Tag returns the BCP 47 tag used for collation.
func (l Lang) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Turkish
}

// Parse accepts exactly "tr" or "en" (case-insensitive).
func Parse(raw string) (Lang, error) {
	switch Lang(strings.ToLower(strings.TrimSpace(raw))) {
	case Turkish:
		return Turkish, nil
	case English:
		return English, nil
	default:
		return "", fmt.Errorf("%w: unsupported language %q", e.ErrInvalidInput, raw)
	}
}

// Match picks the closest supported language for a tag or an
// Accept-Language style list such as "en-GB,en;q=0.8". Unknown input
// yields fallback.
func Match(raw string, fallback Lang) Lang {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supported[idx]
}

// localeHint turns POSIX locale names such as en_US.UTF-8 into a tag.
func localeHint(raw string) string {
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ReplaceAll(raw, "_", "-")
}

// Provider holds the current language and persists every change under
// the lang key.
type Provider struct {
	storage storage.Storage
	logger  *zap.Logger

	mu   sync.RWMutex
	lang Lang

	subsMu  sync.Mutex
	subs    map[int]func(Lang)
	nextSub int
}

func NewProvider(s storage.Storage, logger *zap.Logger) *Provider {
	return &Provider{
		storage: s,
		logger:  logger.Named("i18n"),
		lang:    DefaultLang,
		subs:    make(map[int]func(Lang)),
	}
}

// Init reads the saved language. With nothing saved, hint (for example
// the environment's locale) decides, and DefaultLang after that.
func (p *Provider) Init(ctx context.Context, hint string) error {
	saved, ok, err := p.storage.GetItem(ctx, storage.LangKey)
	if err != nil {
		return err
	}

	lang := DefaultLang
	switch {
	case ok && saved != "":
		lang = Match(saved, DefaultLang)
	case hint != "":
		lang = Match(localeHint(hint), DefaultLang)
	}

	p.mu.Lock()
	p.lang = lang
	p.mu.Unlock()
	return nil
}

// Lang returns the current language.
func (p *Provider) Lang() Lang {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// Translation returns the table of the current language.
func (p *Provider) Translation() Translation {
	return For(p.Lang())
}

// SetLang persists lang and notifies subscribers.
func (p *Provider) SetLang(ctx context.Context, lang Lang) error {
	if _, err := Parse(string(lang)); err != nil {
		return err
	}
	if err := p.storage.SetItem(ctx, storage.LangKey, string(lang)); err != nil {
		p.logger.Error("Failed to persist language", zap.Error(err), zap.String("lang", string(lang)))
		return err
	}

	p.mu.Lock()
	p.lang = lang
	p.mu.Unlock()

	p.subsMu.Lock()
	callbacks := make([]func(Lang), 0, len(p.subs))
	for _, cb := range p.subs {
		callbacks = append(callbacks, cb)
	}
	p.subsMu.Unlock()

	for _, cb := range callbacks {
		cb(lang)
	}
	return nil
}

// Subscribe registers cb for language changes and returns its remover.
func (p *Provider) Subscribe(cb func(Lang)) func() {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	return func() {
		p.subsMu.Lock()
		defer p.subsMu.Unlock()
		delete(p.subs, id)
	}
}

type contextKey struct{}

// NewContext returns a context carrying the language of one request.
func NewContext(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, contextKey{}, lang)
}

// FromContext returns the request language stored by NewContext.
func FromContext(ctx context.Context) (Lang, bool) {
	lang, ok := ctx.Value(contextKey{}).(Lang)
	return lang, ok
}
