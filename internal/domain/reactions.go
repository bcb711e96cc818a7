// Package domain – reaction map helpers. The reactions structure is an
// open-ended mapping (emoji string → ordered set of user IDs) persisted
// as a JSON column; the rule "at most one active reaction per user per
// message" is enforced here rather than by a database constraint.
package domain

// ReactionMap maps an emoji to the users that reacted with it. Empty
// emoji buckets are pruned so the map is either nil/empty or carries
// only non-empty sets.
type ReactionMap map[string][]string

// Has reports whether userID currently reacts with emoji.
func (m ReactionMap) Has(emoji, userID string) bool {
	for _, u := range m[emoji] {
		if u == userID {
			return true
		}
	}
	return false
}

// Add inserts userID into the emoji bucket if absent. It does not touch
// other buckets; callers that need exclusivity use Toggle.
func (m ReactionMap) Add(emoji, userID string) ReactionMap {
	out := m
	if out == nil {
		out = ReactionMap{}
	}
	if out.Has(emoji, userID) {
		return out
	}
	out[emoji] = append(out[emoji], userID)
	return out
}

// Remove deletes userID from the emoji bucket if present, pruning the
// bucket when it empties.
func (m ReactionMap) Remove(emoji, userID string) ReactionMap {
	if m == nil {
		return nil
	}
	users := m[emoji]
	for i, u := range users {
		if u == userID {
			users = append(users[:i:i], users[i+1:]...)
			break
		}
	}
	if len(users) == 0 {
		delete(m, emoji)
	} else {
		m[emoji] = users
	}
	return m
}

// Toggle flips userID's reaction for emoji. Reacting again with the same
// emoji removes it; reacting with a different emoji first strips the user
// from every other bucket so a user holds at most one active reaction.
func (m ReactionMap) Toggle(emoji, userID string) ReactionMap {
	out := m
	if out == nil {
		out = ReactionMap{}
	}
	if out.Has(emoji, userID) {
		return out.Remove(emoji, userID)
	}
	for e := range out {
		if e != emoji {
			out = out.Remove(e, userID)
		}
	}
	return out.Add(emoji, userID)
}

// Empty reports whether the map holds no reactions at all.
func (m ReactionMap) Empty() bool {
	return len(m) == 0
}
