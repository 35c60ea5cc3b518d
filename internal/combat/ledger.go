package combat

// BonusVariable is one stat modifier. ExpiresAtMS == 0 never expires.
type BonusVariable struct {
	Stat        Stat    `json:"stat"`
	Amount      float64 `json:"amount"`
	ExpiresAtMS int64   `json:"expires_at_ms,omitempty"`
}

func (v BonusVariable) live(now int64) bool {
	return v.ExpiresAtMS == 0 || now < v.ExpiresAtMS
}

type BonusEntry struct {
	Key  string          `json:"key"`
	Vars []BonusVariable `json:"vars"`
}

// Ledger is a unit's keyed collection of stat modifiers.
type Ledger struct {
	entries []BonusEntry
}

// Set replaces every entry under key with a single new one.
func (l *Ledger) Set(key string, vars ...BonusVariable) {
	l.Remove(key)
	l.Add(key, vars...)
}

// Add appends an independent entry, even if key is already present.
func (l *Ledger) Add(key string, vars ...BonusVariable) {
	l.entries = append(l.entries, BonusEntry{Key: key, Vars: append([]BonusVariable(nil), vars...)})
}

func (l *Ledger) Remove(key string) {
	out := l.entries[:0]
	for _, e := range l.entries {
		if e.Key != key {
			out = append(out, e)
		}
	}
	l.entries = out
}

func (l *Ledger) Has(key string) bool {
	for _, e := range l.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

// Entries returns the entries under key, oldest first.
func (l *Ledger) Entries(key string) []BonusEntry {
	var out []BonusEntry
	for _, e := range l.entries {
		if e.Key == key {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

// Sum adds every variable matching any of stats. Expired variables count
// until the next Prune.
func (l *Ledger) Sum(stats ...Stat) float64 {
	total := 0.0
	for _, e := range l.entries {
		for _, v := range e.Vars {
			for _, s := range stats {
				if v.Stat == s {
					total += v.Amount
					break
				}
			}
		}
	}
	return total
}

// SumFrom is Sum restricted to the entries under key.
func (l *Ledger) SumFrom(key string, stats ...Stat) float64 {
	total := 0.0
	for _, e := range l.entries {
		if e.Key != key {
			continue
		}
		for _, v := range e.Vars {
			for _, s := range stats {
				if v.Stat == s {
					total += v.Amount
					break
				}
			}
		}
	}
	return total
}

// Prune drops expired variables and any entry left empty by that.
func (l *Ledger) Prune(now int64) {
	out := l.entries[:0]
	for _, e := range l.entries {
		vars := e.Vars[:0]
		for _, v := range e.Vars {
			if v.live(now) {
				vars = append(vars, v)
			}
		}
		if len(vars) == 0 && len(e.Vars) > 0 {
			continue
		}
		e.Vars = vars
		out = append(out, e)
	}
	l.entries = out
}

func (l *Ledger) Clear() { l.entries = nil }
