package simulate

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Persona names.
const (
	PersonaNeutral    = "neutral"
	PersonaDistressed = "distressed"
	PersonaResilient  = "resilient"
	PersonaRandom     = "random"
	PersonaMixed      = "mixed"
)

// Persona answers Likert items with a per-domain tendency. A tendency of 0
// answers uniformly at random.
type Persona struct {
	Name     string
	Default  int
	Tendency map[string]int
	// Jitter is the chance of answering one level away from the tendency.
	Jitter float64
}

var personas = map[string]Persona{
	PersonaNeutral: {Name: PersonaNeutral, Default: 3, Jitter: 0.2},
	PersonaDistressed: {
		Name:    PersonaDistressed,
		Default: 4,
		Tendency: map[string]int{
			model.DomainAnxiety:           5,
			model.DomainDepression:        5,
			model.DomainStress:            5,
			model.DomainFatigue:           4,
			model.DomainSociability:       4,
			model.DomainConscientiousness: 4,
		},
		Jitter: 0.1,
	},
	PersonaResilient: {
		Name:    PersonaResilient,
		Default: 2,
		Tendency: map[string]int{
			model.DomainAnxiety:           1,
			model.DomainDepression:        1,
			model.DomainStress:            2,
			model.DomainSociability:       5,
			model.DomainConscientiousness: 5,
		},
		Jitter: 0.1,
	},
	PersonaRandom: {Name: PersonaRandom},
}

// Personas returns the registered persona names in lexical order.
func Personas() []string {
	names := make([]string, 0, len(personas))
	for n := range personas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPersona returns the persona registered as name.
func LookupPersona(name string) (Persona, error) {
	p, ok := personas[name]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
	}
	return p, nil
}

// pickPersona resolves name, cycling through every persona for "mixed".
func pickPersona(name string, session int) (Persona, error) {
	if name != PersonaMixed {
		return LookupPersona(name)
	}
	names := Personas()
	return personas[names[session%len(names)]], nil
}

// Answer returns the persona's response to an item of domain.
func (p Persona) Answer(rng *rand.Rand, domain string) model.Response {
	level, ok := p.Tendency[domain]
	if !ok {
		level = p.Default
	}
	if level == 0 {
		return model.Response(strconv.Itoa(rng.Intn(5) + 1))
	}
	if rng.Float64() < p.Jitter {
		if rng.Intn(2) == 0 {
			level--
		} else {
			level++
		}
	}
	level = min(max(level, 1), 5)
	return model.Response(strconv.Itoa(level))
}
