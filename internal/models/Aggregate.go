package models

// Credit counts, per emoji, the distinct users who reacted to messages
// authored by userID. Self-reactions never count, and nothing is ever
// received by UnknownAuthor.
func (l Ledger) Credit(userID string) map[string]int {
	result := make(map[string]int)
	if userID == UnknownAuthor {
		return result
	}
	for _, entry := range l {
		if entry == nil || entry.AuthorID != userID {
			continue
		}
		for emoji, rec := range entry.Reactions {
			if rec == nil {
				continue
			}
			result[emoji] += rec.ReceivedExcluding(userID)
		}
	}
	return result
}

// Debit counts, per emoji, the messages on which userID placed that emoji,
// whoever wrote them.
func (l Ledger) Debit(userID string) map[string]int {
	result := make(map[string]int)
	for _, entry := range l {
		if entry == nil {
			continue
		}
		for emoji, rec := range entry.Reactions {
			if rec != nil && rec.HasGiven(userID) {
				result[emoji]++
			}
		}
	}
	return result
}

// Balance nets received against given per emoji. Emoji whose total nets to
// zero are left out.
func (l Ledger) Balance(userID string) map[string]int {
	result := make(map[string]int)
	for _, entry := range l {
		if entry == nil {
			continue
		}
		for emoji, rec := range entry.Reactions {
			if rec == nil {
				continue
			}
			net := 0
			if entry.AuthorID == userID && userID != UnknownAuthor {
				net += len(rec.UsersReceived)
			}
			if rec.HasGiven(userID) {
				net--
			}
			if net != 0 {
				result[emoji] += net
			}
		}
	}
	for emoji, net := range result {
		if net == 0 {
			delete(result, emoji)
		}
	}
	return result
}
