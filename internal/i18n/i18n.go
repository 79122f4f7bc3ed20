// Package i18n holds the server-side message catalogs. Messages are looked
// up by an enumerated Key so a missing translation is a compile-visible gap
// rather than a silently echoed string path.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Key int

const (
	BreakdownPlanning Key = iota
	BreakdownAssembling
	BreakdownDone
	ReminderTitle
	ReminderBody
	ReminderEmailSubject
	DigestSubject
	DigestBody
	PushTestTitle
	PushTestBody
	EmailTestSubject
	EmailTestBody
	WelcomeTitle
	WelcomeBody
	GoalCompletedTitle
	GoalCompletedBody

	keyCount
)

var keyNames = [...]string{
	BreakdownPlanning:    "breakdown.planning",
	BreakdownAssembling:  "breakdown.assembling",
	BreakdownDone:        "breakdown.done",
	ReminderTitle:        "reminder.title",
	ReminderBody:         "reminder.body",
	ReminderEmailSubject: "reminder.emailSubject",
	DigestSubject:        "digest.subject",
	DigestBody:           "digest.body",
	PushTestTitle:        "push.test.title",
	PushTestBody:         "push.test.body",
	EmailTestSubject:     "email.test.subject",
	EmailTestBody:        "email.test.body",
	WelcomeTitle:         "welcome.title",
	WelcomeBody:          "welcome.body",
	GoalCompletedTitle:   "goal.completed.title",
	GoalCompletedBody:    "goal.completed.body",
}

func (k Key) String() string {
	if k >= 0 && int(k) < len(keyNames) && keyNames[k] != "" {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// DefaultLocale is the fallback for unknown locales and missing entries.
const DefaultLocale = "en"

var catalogs = map[string]map[Key]string{
	"en": english,
	"zh": chinese,
	"es": spanish,
}

// supported is ordered for the matcher: the first entry is the fallback.
var supported = []language.Tag{language.English, language.Chinese, language.Spanish}

var matcher = language.NewMatcher(supported)

// Supported lists the locale codes with a catalog.
func Supported() []string {
	return []string{"en", "zh", "es"}
}

func IsSupported(locale string) bool {
	_, ok := catalogs[locale]
	return ok
}

// Match negotiates a supported locale from an Accept-Language header or a
// single tag such as "zh-CN".
func Match(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return Supported()[idx]
}

// T returns the message for key in locale, formatted with args. It falls
// back to the default locale, then to the key's name.
func T(locale string, key Key, args ...any) string {
	msg, ok := lookup(locale, key)
	if !ok {
		return key.String()
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func lookup(locale string, key Key) (string, bool) {
	locale = strings.ToLower(locale)
	if cat, ok := catalogs[locale]; ok {
		if msg, ok := cat[key]; ok {
			return msg, true
		}
	}
	msg, ok := catalogs[DefaultLocale][key]
	return msg, ok
}
