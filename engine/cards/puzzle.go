package cards

import (
	"fmt"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/scene"
	"github.com/nathoo/boltcore/types"
)

// Verdict is a rules judgment on one interaction.
type Verdict int

const (
	// VerdictContinue keeps playing.
	VerdictContinue Verdict = iota
	// VerdictWin solves the puzzle.
	VerdictWin
	// VerdictLose restarts the puzzle from its initial state.
	VerdictLose
)

// Rules judges one puzzle's interactions. Init receives the scene and the
// parameter ids resolved for the selected difficulty and variant; it runs
// again after a losing verdict. HandleButton judges a click that landed on
// button btn, scene.NoButton for a miss.
type Rules interface {
	Init(env *Env, scn *scene.Scene, params []boltlib.ResourceID) error
	HandleButton(btn int) Verdict
}

// TimerRules is implemented by rules that react to timer messages.
type TimerRules interface {
	HandleTimer(id int) Verdict
}

// PuzzleCard hosts one mini-game behind the rules seam. The puzzle resource
// is a list with one row per difficulty level; each row lists the variants
// for that level, and a variant is itself a list of {scene, params...}. The
// card resolves that indirection, hands params to the rules, and translates
// verdicts: win reports Win upward, lose re-inits in place. Right-click
// backs out to the hub, or wins outright when the profile's cheat flag is
// set.
type PuzzleCard struct {
	env    *Env
	scn    *scene.Scene
	rules  Rules
	params []boltlib.ResourceID
}

// NewPuzzle resolves listID down to a concrete variant for the player's
// difficulty in category and decodes its scene.
func NewPuzzle(env *Env, listID boltlib.ResourceID, category int, rules Rules) (*PuzzleCard, error) {
	levels, err := boltlib.LoadResourceList(env.Container, listID)
	if err != nil {
		return nil, fmt.Errorf("puzzle card: %w", err)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("puzzle card: %v has no difficulty rows", listID)
	}
	level := env.difficultyFor(category)
	if level >= len(levels) {
		level = len(levels) - 1
	}

	variants, err := boltlib.LoadResourceList(env.Container, levels[level])
	if err != nil {
		return nil, fmt.Errorf("puzzle card: level %d: %w", level, err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("puzzle card: level %d has no variants", level)
	}
	variant := variants[env.pick(len(variants))]

	spec, err := boltlib.LoadResourceList(env.Container, variant)
	if err != nil {
		return nil, fmt.Errorf("puzzle card: variant %v: %w", variant, err)
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("puzzle card: variant %v names no scene", variant)
	}

	scn, err := scene.Load(env.Container, spec[0], env.Renderer, env.Log)
	if err != nil {
		return nil, fmt.Errorf("puzzle card: %w", err)
	}
	c := &PuzzleCard{env: env, scn: scn, rules: rules, params: spec[1:]}
	if err := rules.Init(env, scn, c.params); err != nil {
		return nil, fmt.Errorf("puzzle card: rules init: %w", err)
	}
	return c, nil
}

// Scene exposes the card's scene for shells that inspect it.
func (c *PuzzleCard) Scene() *scene.Scene { return c.scn }

func (c *PuzzleCard) Enter() { c.scn.Enter() }

func (c *PuzzleCard) HandleMsg(msg types.Msg) types.Outcome {
	msg = c.scn.HandleMsg(msg)
	switch msg.Kind {
	case types.MsgClickButton:
		return c.judge(c.rules.HandleButton(msg.Num))
	case types.MsgRightClick:
		if c.env.Profile != nil && c.env.Profile.Cheat {
			return types.Outcome{Kind: types.Win}
		}
		return types.Outcome{Kind: types.Return}
	case types.MsgTimer:
		if tr, ok := c.rules.(TimerRules); ok {
			return c.judge(tr.HandleTimer(msg.Num))
		}
	}
	return types.Outcome{Kind: types.Continue}
}

func (c *PuzzleCard) judge(v Verdict) types.Outcome {
	switch v {
	case VerdictWin:
		return types.Outcome{Kind: types.Win}
	case VerdictLose:
		if err := c.rules.Init(c.env, c.scn, c.params); err != nil {
			c.env.Log.Warn().Err(err).Msg("puzzle restart failed")
		}
		c.scn.Enter()
		return types.Outcome{Kind: types.Continue}
	default:
		return types.Outcome{Kind: types.Continue}
	}
}

// TargetRules wins when a click lands on a winning button. The winning
// indices come from params[0], a u8-values resource; with no params every
// button wins. Misses and other buttons continue.
type TargetRules struct {
	targets []int
}

func (r *TargetRules) Init(env *Env, scn *scene.Scene, params []boltlib.ResourceID) error {
	r.targets = nil
	if len(params) == 0 {
		return nil
	}
	vals, err := boltlib.LoadU8Values(env.Container, params[0])
	if err != nil {
		return fmt.Errorf("target rules: %w", err)
	}
	for _, v := range vals {
		r.targets = append(r.targets, int(v))
	}
	return nil
}

func (r *TargetRules) HandleButton(btn int) Verdict {
	if btn == scene.NoButton {
		return VerdictContinue
	}
	if len(r.targets) == 0 {
		return VerdictWin
	}
	for _, t := range r.targets {
		if t == btn {
			return VerdictWin
		}
	}
	return VerdictContinue
}
