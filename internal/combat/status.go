package combat

type StatusKind int

const (
	StatusStunned StatusKind = iota
	StatusSilenced
	StatusStealth
	StatusBanished
	StatusInvulnerable
	StatusUnstoppable
	StatusCCImmune
	StatusAttackSpeedSlow
	StatusArmorReduction
	StatusMagicResistReduction
	StatusGrievousWounds
	StatusAoEDamageReduction
	statusKindCount
)

var statusNames = [statusKindCount]string{
	"stunned", "silenced", "stealth", "banished", "invulnerable", "unstoppable",
	"ccImmune", "attackSpeedSlow", "armorReduction", "magicResistReduction",
	"grievousWounds", "aoeDamageReduction",
}

func (k StatusKind) String() string {
	if k < 0 || k >= statusKindCount {
		return "unknown"
	}
	return statusNames[k]
}

// ParseStatusKind maps a content name to a kind.
func ParseStatusKind(name string) (StatusKind, bool) {
	for i, n := range statusNames {
		if n == name {
			return StatusKind(i), true
		}
	}
	return 0, false
}

// IsCC reports the kinds blocked by ccImmune.
func (k StatusKind) IsCC() bool {
	return k == StatusStunned || k == StatusAttackSpeedSlow || k == StatusSilenced
}

type StatusEffect struct {
	Active      bool    `json:"active"`
	ExpiresAtMS int64   `json:"expires_at_ms"`
	Amount      float64 `json:"amount"`
}

// StatusTable holds one slot per kind.
type StatusTable [statusKindCount]StatusEffect

// Apply activates kind until now+durationMS. An active status is only ever
// extended, never shortened. Returns false if the application was blocked.
func (t *StatusTable) Apply(now int64, kind StatusKind, durationMS int64, amount float64) bool {
	if kind < 0 || kind >= statusKindCount {
		return false
	}
	if kind == StatusStunned && t[StatusUnstoppable].Active {
		return false
	}
	if kind.IsCC() && t[StatusCCImmune].Active {
		return false
	}
	s := &t[kind]
	expires := now + durationMS
	if !s.Active || expires > s.ExpiresAtMS {
		s.ExpiresAtMS = expires
		s.Amount = amount
	} else if amount > s.Amount {
		s.Amount = amount
	}
	s.Active = true

	switch kind {
	case StatusUnstoppable:
		t.Clear(StatusStunned)
	case StatusCCImmune:
		for k := StatusKind(0); k < statusKindCount; k++ {
			if k.IsCC() {
				t.Clear(k)
			}
		}
	}
	return true
}

func (t *StatusTable) Clear(kind StatusKind) {
	t[kind] = StatusEffect{}
}

func (t *StatusTable) Active(kind StatusKind) bool { return t[kind].Active }

// Amount is the amount of an active status, or 0.
func (t *StatusTable) Amount(kind StatusKind) float64 {
	if !t[kind].Active {
		return 0
	}
	return t[kind].Amount
}

// Update expires every status whose time has come.
func (t *StatusTable) Update(now int64) {
	for k := range t {
		if t[k].Active && now >= t[k].ExpiresAtMS {
			t[k] = StatusEffect{}
		}
	}
}

func (t *StatusTable) Reset() { *t = StatusTable{} }
