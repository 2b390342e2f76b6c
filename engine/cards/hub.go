package cards

import (
	"fmt"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/engine/scene"
	"github.com/nathoo/boltcore/types"
)

// HubEntry wires one hub button to one puzzle branch. Label keys the
// profile's solved set; Marker names a resource list of per-difficulty
// sprite overlays drawn on solved entries (invalid id: no marker).
type HubEntry struct {
	Button   int
	Branch   int
	Label    string
	Category int
	Marker   boltlib.ResourceID
}

// HubCard dispatches to puzzles. A click on an entry's button enters its
// branch; the exit button ends the hub. In freeplay every entry stays open
// and no solved markers draw.
type HubCard struct {
	env      *Env
	scn      *scene.Scene
	entries  []HubEntry
	exit     int
	freeplay bool
}

// NewHub decodes the hub scene. exit is the button index that leaves the
// hub; pass scene.NoButton for hubs without one.
func NewHub(env *Env, sceneID boltlib.ResourceID, entries []HubEntry, exit int, freeplay bool) (*HubCard, error) {
	scn, err := scene.Load(env.Container, sceneID, env.Renderer, env.Log)
	if err != nil {
		return nil, fmt.Errorf("hub card: %w", err)
	}
	for _, e := range entries {
		if e.Button < 0 || e.Button >= scn.NumButtons() {
			return nil, fmt.Errorf("hub card: entry %q wants button %d, scene has %d",
				e.Label, e.Button, scn.NumButtons())
		}
	}
	return &HubCard{env: env, scn: scn, entries: entries, exit: exit, freeplay: freeplay}, nil
}

func (c *HubCard) Enter() {
	c.scn.Enter()
	if !c.freeplay {
		c.drawSolvedMarkers()
	}
}

// drawSolvedMarkers overlays the marker sprites of every solved entry. The
// marker list holds one sprites resource per difficulty level.
func (c *HubCard) drawSolvedMarkers() {
	if c.env.Profile == nil {
		return
	}
	drew := false
	for _, e := range c.entries {
		if !e.Marker.Valid() || !c.env.Profile.IsSolved(e.Label) {
			continue
		}
		levels, err := boltlib.LoadResourceList(c.env.Container, e.Marker)
		if err != nil {
			c.env.Log.Warn().Err(err).Str("entry", e.Label).Msg("bad marker list")
			continue
		}
		level := c.env.difficultyFor(e.Category)
		if level >= len(levels) {
			level = len(levels) - 1
		}
		if level < 0 {
			continue
		}
		if c.drawMarker(levels[level]) {
			drew = true
		}
	}
	if drew {
		c.env.Renderer.MarkDirty()
	}
}

func (c *HubCard) drawMarker(id boltlib.ResourceID) bool {
	sprites, err := boltlib.LoadSprites(c.env.Container, id)
	if err != nil {
		c.env.Log.Warn().Err(err).Msg("bad marker sprites")
		return false
	}
	surf := c.env.Renderer.PlaneSurface(gfx.PlaneFore)
	drew := false
	for _, sp := range sprites {
		img, err := boltlib.LoadImage(c.env.Container, sp.Image)
		if err != nil {
			c.env.Log.Warn().Err(err).Msg("bad marker image")
			continue
		}
		surf.DrawImage(img, sp.Pos.Sub(c.scn.Origin()), true)
		drew = true
	}
	return drew
}

// Scene exposes the card's scene for shells that inspect it.
func (c *HubCard) Scene() *scene.Scene { return c.scn }

func (c *HubCard) HandleMsg(msg types.Msg) types.Outcome {
	msg = c.scn.HandleMsg(msg)
	if msg.Kind != types.MsgClickButton || msg.Num == scene.NoButton {
		return types.Outcome{Kind: types.Continue}
	}
	if msg.Num == c.exit {
		return types.Outcome{Kind: types.End}
	}
	for _, e := range c.entries {
		if e.Button == msg.Num {
			return types.Outcome{Kind: types.EnterSub, Index: e.Branch}
		}
	}
	c.env.Log.Debug().Int("button", msg.Num).Msg("unmapped hub button")
	return types.Outcome{Kind: types.Continue}
}
