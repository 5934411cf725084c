// Package prefs resolves whether a recipient allows delivery on a channel.
// Resolution is a pure two-tier lookup: a category override present in the
// preference record decides entirely; otherwise the global channel flag
// applies. No I/O, no side effects.
package prefs

import "notifyd/internal/models"

// IsAllowed reports whether the user's preferences permit delivery on the
// given channel. category may be empty. A nil preference record, or a channel
// flag that was never set, defaults to allowed (recipients opt out, not in).
func IsAllowed(p *models.Preferences, ch models.Channel, category string) bool {
	if p == nil {
		return true
	}

	if category != "" {
		if cat, ok := p.Categories[category]; ok {
			return categoryAllows(cat, ch)
		}
	}

	if flag := p.ChannelFlag(ch); flag != nil {
		return *flag
	}
	return true
}

// categoryAllows applies the override record: the category must be enabled
// and the channel must be a member of its enabled set.
func categoryAllows(cat models.CategoryPreference, ch models.Channel) bool {
	if !cat.Enabled {
		return false
	}
	for _, c := range cat.EnabledChannels {
		if c == ch {
			return true
		}
	}
	return false
}
