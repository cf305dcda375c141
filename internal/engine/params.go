package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/hailam/absorbchess/internal/board"
)

// EvalParams holds the evaluation weights. All values are centipawns except
// MobilityWeight, which multiplies a square count.
type EvalParams struct {
	PawnValue   int `json:"pawn_value"`
	KnightValue int `json:"knight_value"`
	BishopValue int `json:"bishop_value"`
	RookValue   int `json:"rook_value"`
	QueenValue  int `json:"queen_value"`

	// Value of king-step movement absorbed by a non-king.
	KingStepValue int `json:"king_step_value"`
	// Value of pawn or king-step movement on a piece that already covers
	// queen lines.
	PawnAbilityToken int `json:"pawn_ability_token"`

	MobilityWeight int `json:"mobility_weight"`

	CheckPenalty     int `json:"check_penalty"`
	KingAbilityBonus int `json:"king_ability_bonus"` // per ability held by the king
	CastledBonus     int `json:"castled_bonus"`
	CanCastleBonus   int `json:"can_castle_bonus"`
}

// DefaultEvalParams returns the built-in weights.
func DefaultEvalParams() EvalParams {
	return EvalParams{
		PawnValue:        100,
		KnightValue:      300,
		BishopValue:      300,
		RookValue:        500,
		QueenValue:       900,
		KingStepValue:    200,
		PawnAbilityToken: 20,
		MobilityWeight:   4,
		CheckPenalty:     50,
		KingAbilityBonus: 30,
		CastledBonus:     40,
		CanCastleBonus:   15,
	}
}

func (p *EvalParams) fields() map[string]*int {
	return map[string]*int{
		"PawnValue":        &p.PawnValue,
		"KnightValue":      &p.KnightValue,
		"BishopValue":      &p.BishopValue,
		"RookValue":        &p.RookValue,
		"QueenValue":       &p.QueenValue,
		"KingStepValue":    &p.KingStepValue,
		"PawnAbilityToken": &p.PawnAbilityToken,
		"MobilityWeight":   &p.MobilityWeight,
		"CheckPenalty":     &p.CheckPenalty,
		"KingAbilityBonus": &p.KingAbilityBonus,
		"CastledBonus":     &p.CastledBonus,
		"CanCastleBonus":   &p.CanCastleBonus,
	}
}

// Set assigns a weight by name. Names match the field names, ignoring case.
func (p *EvalParams) Set(name string, value int) error {
	for field, ptr := range p.fields() {
		if strings.EqualFold(field, name) {
			*ptr = value
			return nil
		}
	}
	return fmt.Errorf("unknown eval parameter: %q", name)
}

// Get returns a weight by name.
func (p *EvalParams) Get(name string) (int, bool) {
	for field, ptr := range p.fields() {
		if strings.EqualFold(field, name) {
			return *ptr, true
		}
	}
	return 0, false
}

// Names lists the settable weights in sorted order.
func (p *EvalParams) Names() []string {
	names := make([]string, 0, 12)
	for field := range p.fields() {
		names = append(names, field)
	}
	sort.Strings(names)
	return names
}

// Fingerprint identifies the weight set. Equal weights give equal
// fingerprints; stored search results are only reused under the same one.
func (p *EvalParams) Fingerprint() uint64 {
	d := xxhash.New()
	for _, name := range p.Names() {
		v, _ := p.Get(name)
		fmt.Fprintf(d, "%s=%d;", name, v)
	}
	return d.Sum64()
}

// BaseValue is the material value of a base type. Kings are worth nothing;
// losing one is scored by the search.
func (p *EvalParams) BaseValue(pt board.PieceType) int {
	switch pt {
	case board.Pawn:
		return p.PawnValue
	case board.Knight:
		return p.KnightValue
	case board.Bishop:
		return p.BishopValue
	case board.Rook:
		return p.RookValue
	case board.Queen:
		return p.QueenValue
	}
	return 0
}

// coverage values the slider lines of a movement set. Rook plus bishop is
// worth one queen, never rook + bishop + queen.
func (p *EvalParams) coverage(set board.Abilities) int {
	switch {
	case hasQueenLines(set):
		return p.QueenValue
	case set.Has(board.Rook):
		return p.RookValue
	case set.Has(board.Bishop):
		return p.BishopValue
	}
	return 0
}

func hasQueenLines(set board.Abilities) bool {
	return set.Has(board.Queen) || (set.Has(board.Rook) && set.Has(board.Bishop))
}

// PieceValue is the ability-aware material value of an occupant. Only the
// movement the abilities add on top of the base type counts.
func (p *EvalParams) PieceValue(o board.Occupant) int {
	own := board.AbilityOf(o.Type)
	set := o.Movement()
	v := p.BaseValue(o.Type) + p.coverage(set) - p.coverage(own)

	queen := hasQueenLines(set)
	if o.Type != board.Knight && set.Has(board.Knight) {
		v += p.KnightValue
	}
	if o.Type != board.King && set.Has(board.King) {
		if queen {
			v += p.PawnAbilityToken
		} else {
			v += p.KingStepValue
		}
	}
	if o.Type != board.Pawn && set.Has(board.Pawn) {
		if queen {
			v += p.PawnAbilityToken
		} else {
			v += p.PawnValue
		}
	}
	return v
}
