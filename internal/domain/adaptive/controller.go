// Package adaptive selects the next item of a questionnaire session and keeps
// the running ability estimate.
//
// A Controller owns exactly one session at a time and is not safe for
// concurrent use; callers serialize Start, Next and Record.
package adaptive

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/internal/domain/scoring"
)

// Default controller configuration constants.
const (
	defaultQuota          = 10
	defaultInitialAbility = 0.5
	defaultRandomSeed     = 42
)

// State is the lifecycle position of a session.
type State int

// Session states.
const (
	StateNotStarted State = iota
	StateInProgress
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Path names the branch of the selection policy that produced an item.
type Path string

// Selection paths.
const (
	// PathAdaptive picks the closest difficulty in the least-assessed domain.
	PathAdaptive Path = "adaptive"
	// PathFallback picks at random because the target domain is exhausted.
	PathFallback Path = "fallback"
	// PathRandom picks at random because the bank declares no domains.
	PathRandom Path = "random"
)

// Ticket identifies one issued item. A response is accepted only with the
// ticket of the item currently pending.
type Ticket struct {
	ID       string `json:"id"`
	ItemID   int    `json:"item_id"`
	Sequence int    `json:"sequence"`
}

// Selection is an issued item together with how it was chosen.
type Selection struct {
	Ticket        Ticket     `json:"ticket"`
	Item          model.Item `json:"item"`
	Domain        string     `json:"domain,omitempty"`
	Path          Path       `json:"path"`
	TargetAbility float64    `json:"target_ability"`
}

// Controller runs the adaptive selection policy over a bank snapshot.
type Controller struct {
	bank     []model.Item
	domains  []string // first-appearance order in the bank
	byDomain map[string][]model.Item

	scorer         scoring.Scorer
	rng            *rand.Rand
	quota          int
	initialAbility float64
	newID          func() string

	sessionID string
	state     State
	ability   float64
	answered  map[int]struct{}
	history   []model.Record
	report    model.Report
	pending   *Selection
}

// New creates a controller over a snapshot of bank. The session is not
// started until Start is called.
func New(bank []model.Item, opts ...Option) *Controller {
	c := &Controller{
		bank:           append([]model.Item(nil), bank...),
		byDomain:       make(map[string][]model.Item),
		scorer:         scoring.NewResponseScorer(),
		rng:            rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible selection
		quota:          defaultQuota,
		initialAbility: defaultInitialAbility,
		newID:          uuid.NewString,
		state:          StateNotStarted,
		report:         model.NeutralReport(),
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, item := range c.bank {
		if !item.HasDomain() {
			continue
		}
		if _, ok := c.byDomain[item.Domain]; !ok {
			c.domains = append(c.domains, item.Domain)
		}
		c.byDomain[item.Domain] = append(c.byDomain[item.Domain], item)
	}

	c.ability = c.initialAbility
	c.answered = make(map[int]struct{})

	return c
}

// Start begins a fresh session, discarding any previous one.
func (c *Controller) Start() {
	c.sessionID = c.newID()
	c.state = StateInProgress
	c.ability = c.initialAbility
	c.answered = make(map[int]struct{})
	c.history = nil
	c.report = model.NeutralReport()
	c.pending = nil
}

// Restart is Start; it exists so drivers can express intent.
func (c *Controller) Restart() {
	c.Start()
}

// SelectNextItem applies the selection policy to the current session state
// without issuing a ticket. scorer may be nil, in which case the session
// ability is used as the target for every domain. It returns false only when
// every bank item has been answered.
func (c *Controller) SelectNextItem(scorer scoring.Scorer) (model.Item, Path, float64, bool) {
	if len(c.domains) == 0 {
		item, ok := c.pickRemaining()
		return item, PathRandom, c.ability, ok
	}

	target := c.targetDomain()

	var candidates []model.Item
	for _, item := range c.byDomain[target] {
		if !c.IsAnswered(item.ID) {
			candidates = append(candidates, item)
		}
	}
	if len(candidates) == 0 {
		item, ok := c.pickRemaining()
		return item, PathFallback, c.ability, ok
	}

	ability := c.domainAbility(scorer, target)

	best := candidates[0]
	bestDist := math.Abs(best.Difficulty - ability)
	for _, item := range candidates[1:] {
		if d := math.Abs(item.Difficulty - ability); d < bestDist {
			best, bestDist = item, d
		}
	}
	return best, PathAdaptive, ability, true
}

// targetDomain returns the domain with the fewest answered items; ties go to
// the domain that appears first in the bank.
func (c *Controller) targetDomain() string {
	counts := make(map[string]int, len(c.domains))
	for _, r := range c.history {
		if r.Item.HasDomain() {
			counts[r.Item.Domain]++
		}
	}
	target := c.domains[0]
	for _, d := range c.domains[1:] {
		if counts[d] < counts[target] {
			target = d
		}
	}
	return target
}

// domainAbility is the scorer's current estimate for domain, or the session
// ability when there is no scorer, no history, or no response in domain yet.
func (c *Controller) domainAbility(scorer scoring.Scorer, domain string) float64 {
	if scorer == nil || len(c.history) == 0 {
		return c.ability
	}
	if score, ok := scorer.Report(c.history).Domains[domain]; ok {
		return score
	}
	return c.ability
}

// pickRemaining chooses uniformly among unanswered bank items.
func (c *Controller) pickRemaining() (model.Item, bool) {
	var remaining []model.Item
	for _, item := range c.bank {
		if !c.IsAnswered(item.ID) {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == 0 {
		return model.Item{}, false
	}
	return remaining[c.rng.Intn(len(remaining))], true
}

// Next issues the next item with a fresh ticket. While an item is pending,
// Next returns the same selection again. When the bank is exhausted the
// session completes and ErrBankExhausted is returned.
func (c *Controller) Next() (Selection, error) {
	switch c.state {
	case StateNotStarted:
		return Selection{}, ErrNotStarted
	case StateComplete:
		return Selection{}, ErrSessionComplete
	}

	if c.pending != nil {
		return *c.pending, nil
	}

	item, path, ability, ok := c.SelectNextItem(c.scorer)
	if !ok {
		c.state = StateComplete
		return Selection{}, ErrBankExhausted
	}

	sel := Selection{
		Ticket: Ticket{
			ID:       c.newID(),
			ItemID:   item.ID,
			Sequence: len(c.history) + 1,
		},
		Item:          item,
		Domain:        item.Domain,
		Path:          path,
		TargetAbility: ability,
	}
	c.pending = &sel
	return sel, nil
}

// Record scores response against the pending item identified by ticketID,
// appends it to the history, and returns the recomputed report. The session
// completes once the quota is reached.
func (c *Controller) Record(ticketID string, response model.Response) (model.Report, error) {
	switch c.state {
	case StateNotStarted:
		return model.Report{}, ErrNotStarted
	case StateComplete:
		return model.Report{}, ErrSessionComplete
	}
	if c.pending == nil {
		return model.Report{}, ErrNoPendingItem
	}
	if ticketID != c.pending.Ticket.ID {
		return model.Report{}, ErrTicketMismatch
	}

	item := c.pending.Item
	c.pending = nil
	c.answered[item.ID] = struct{}{}
	c.history = append(c.history, model.Record{Item: item, Response: response})
	c.report = c.scorer.Report(c.history)
	c.ability = c.report.Overall

	if len(c.history) >= c.quota {
		c.state = StateComplete
	}

	return c.report.Clone(), nil
}

// SessionID identifies the current session; empty before Start.
func (c *Controller) SessionID() string { return c.sessionID }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Ability returns the running ability estimate.
func (c *Controller) Ability() float64 { return c.ability }

// Quota returns the number of responses that completes a session.
func (c *Controller) Quota() int { return c.quota }

// Answered returns the number of recorded responses.
func (c *Controller) Answered() int { return len(c.history) }

// IsAnswered reports whether item id was already presented and answered.
func (c *Controller) IsAnswered(id int) bool {
	_, ok := c.answered[id]
	return ok
}

// Remaining returns the number of unanswered bank items.
func (c *Controller) Remaining() int {
	n := 0
	for _, item := range c.bank {
		if !c.IsAnswered(item.ID) {
			n++
		}
	}
	return n
}

// Pending returns the issued, unanswered selection if there is one.
func (c *Controller) Pending() (Selection, bool) {
	if c.pending == nil {
		return Selection{}, false
	}
	return *c.pending, true
}

// History returns a copy of the response records in answer order.
func (c *Controller) History() []model.Record {
	return append([]model.Record(nil), c.history...)
}

// Report returns the latest report; neutral before the first response.
func (c *Controller) Report() model.Report {
	return c.report.Clone()
}

// Domains returns the bank's domains in first-appearance order.
func (c *Controller) Domains() []string {
	return append([]string(nil), c.domains...)
}

// BankSize returns the number of items in the snapshot.
func (c *Controller) BankSize() int { return len(c.bank) }
