// Package labels renders localized display labels for payment types.
package labels

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// DefaultLanguage is used when no language is configured.
var DefaultLanguage = language.Korean

// Labeler localizes payment-type group keys.
type Labeler struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// New loads the embedded message files and returns a Labeler for lang.
// An empty lang selects DefaultLanguage.
func New(lang string) (*Labeler, error) {
	tag := DefaultLanguage
	if lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parse label language %q: %w", lang, err)
		}
		tag = parsed
	}

	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}
	for _, name := range files {
		buf, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	return &Labeler{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

// Language returns the BCP 47 tag labels are rendered in.
func (l *Labeler) Language() string {
	return l.tag.String()
}

// PaymentType returns the label for a history group key ("credit",
// "postpaid" or "other"). Unknown keys are labelled as other.
func (l *Labeler) PaymentType(key string) string {
	switch key {
	case "credit", "postpaid", "other":
	default:
		key = "other"
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: "payment_type_" + key})
	if err != nil {
		return key
	}
	return msg
}
