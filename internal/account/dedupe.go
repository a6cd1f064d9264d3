package account

// Dedupe drops accounts whose (issuer, name) pair has already been seen.
// The first occurrence wins and input order is preserved.
func Dedupe(accounts []Account) []Account {
	if len(accounts) == 0 {
		return nil
	}

	seen := make(map[Key]bool, len(accounts))
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		k := a.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
