// Package cards implements the interactive states the script engine swaps
// through: menus, hubs, puzzle hosts, and slideshows. Each card owns one
// decoded scene and is dropped when the script advances; nothing here
// outlives its sequence step except what the profile records.
package cards

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/engine/host"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/engine/scene"
	"github.com/nathoo/boltcore/types"
)

// Env bundles the shared collaborators a card needs. The container and
// renderer are borrowed for the card's lifetime; Profile may be nil (quick
// starts), and cards then fall back to mid difficulty with nothing solved.
// Pick selects among n variants and defaults to the first when unset.
type Env struct {
	Log       zerolog.Logger
	Container *boltlib.Container
	Renderer  gfx.Renderer
	Audio     host.Audio
	Platform  host.Platform
	Profile   *profile.Profile
	Pick      func(n int) int
}

func (e *Env) difficultyFor(cat int) int {
	if e.Profile == nil {
		return 1
	}
	return e.Profile.DifficultyFor(cat)
}

func (e *Env) pick(n int) int {
	if n <= 1 {
		return 0
	}
	if e.Pick == nil {
		return 0
	}
	i := e.Pick(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

// MenuCard is a scene with a per-button outcome mapping. Hover highlights
// come free from the scene; a click on a mapped button yields its outcome,
// anything else continues.
type MenuCard struct {
	env *Env
	scn *scene.Scene
	out map[int]types.Outcome
}

// NewMenu decodes sceneID and binds the button mapping.
func NewMenu(env *Env, sceneID boltlib.ResourceID, out map[int]types.Outcome) (*MenuCard, error) {
	scn, err := scene.Load(env.Container, sceneID, env.Renderer, env.Log)
	if err != nil {
		return nil, fmt.Errorf("menu card: %w", err)
	}
	return &MenuCard{env: env, scn: scn, out: out}, nil
}

// Scene exposes the card's scene for shells that inspect it.
func (c *MenuCard) Scene() *scene.Scene { return c.scn }

func (c *MenuCard) Enter() { c.scn.Enter() }

func (c *MenuCard) HandleMsg(msg types.Msg) types.Outcome {
	msg = c.scn.HandleMsg(msg)
	if msg.Kind != types.MsgClickButton || msg.Num == scene.NoButton {
		return types.Outcome{Kind: types.Continue}
	}
	o, ok := c.out[msg.Num]
	if !ok {
		c.env.Log.Debug().Int("button", msg.Num).Msg("unmapped menu button")
		return types.Outcome{Kind: types.Continue}
	}
	return o
}
