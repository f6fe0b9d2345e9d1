package notification

import (
	"slices"
	"strings"
	"time"
)

// Template names.
const (
	TemplateSkillMatch        = "skill_match"
	TemplateNewMessage        = "new_message"
	TemplateSkillRequest      = "skill_request"
	TemplateMeetingRequest    = "meeting_request"
	TemplateProfileView       = "profile_view"
	TemplateBadgeEarned       = "badge_earned"
	TemplateConnectionRequest = "connection_request"
	TemplateSkillVerified     = "skill_verified"
	TemplateWelcome           = "welcome"

	// Types without a template that still expire.
	TypeReminder     = "reminder"
	TypeSystemUpdate = "system_update"
)

// Length limits of rendered notifications, in runes.
const (
	MaxTitleLength   = 100
	MaxMessageLength = 300
)

const day = 24 * time.Hour

// Template is the title and message pattern of a notification type. Patterns
// reference variables as {name}.
type Template struct {
	Title   string
	Message string
}

var templates = map[string]Template{ //nolint:gochecknoglobals // immutable catalogue
	TemplateSkillMatch: {
		Title:   "New Skill Match! 🎯",
		Message: "We found someone with skills that match your interests: {matchName}.",
	},
	TemplateNewMessage: {
		Title:   "New Message 💬",
		Message: "You have a new message from {senderName}.",
	},
	TemplateSkillRequest: {
		Title:   "Skill Exchange Request 🔄",
		Message: "{senderName} wants to learn {skillName} from you.",
	},
	TemplateMeetingRequest: {
		Title:   "Meeting Request 📅",
		Message: "{senderName} has requested a meeting with you.",
	},
	TemplateProfileView: {
		Title:   "Profile View 👀",
		Message: "{senderName} viewed your profile.",
	},
	TemplateBadgeEarned: {
		Title:   "Badge Earned! 🏆",
		Message: `Congratulations! You earned the "{badgeName}" badge.`,
	},
	TemplateConnectionRequest: {
		Title:   "Connection Request 🤝",
		Message: "{senderName} wants to connect with you.",
	},
	TemplateSkillVerified: {
		Title:   "Skill Verified ✅",
		Message: "Your {skillName} skill has been verified!",
	},
	TemplateWelcome: {
		Title:   "Welcome! 🚀",
		Message: "Start your skill exchange journey by adding your first skills.",
	},
}

var expiry = map[string]time.Duration{ //nolint:gochecknoglobals // immutable lookup table
	TemplateSkillMatch:  7 * day,
	TemplateProfileView: 3 * day,
	TypeReminder:        1 * day,
	TypeSystemUpdate:    30 * day,
}

// Lookup returns the template called name.
func Lookup(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}

// Names returns every template name, sorted.
func Names() []string {
	out := make([]string, 0, len(templates))
	for name := range templates {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ExpiryFor returns how long notifications of type typ live, if they expire.
func ExpiryFor(typ string) (time.Duration, bool) {
	d, ok := expiry[typ]
	return d, ok
}

// Render substitutes every {key} in pattern with vars[key]. Unknown
// placeholders are left as is.
func Render(pattern string, vars map[string]string) string {
	if len(vars) == 0 {
		return pattern
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}
