package cards

import (
	"fmt"
	"image"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/types"
)

// SlideshowCard steps through a resource list of full-screen images on a
// timer. A click skips the rest; the final slide's timer ends the card.
// Re-entering (after a movie interruption) repaints the current slide
// without restarting the sequence.
type SlideshowCard struct {
	env     *Env
	ids     []boltlib.ResourceID
	delayMs int
	timerID int
	index   int
}

// NewSlideshow decodes the slide list. delayMs is the per-slide hold time
// and timerID tags this card's timer messages.
func NewSlideshow(env *Env, listID boltlib.ResourceID, delayMs, timerID int) (*SlideshowCard, error) {
	ids, err := boltlib.LoadResourceList(env.Container, listID)
	if err != nil {
		return nil, fmt.Errorf("slideshow card: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("slideshow card: %v lists no slides", listID)
	}
	return &SlideshowCard{env: env, ids: ids, delayMs: delayMs, timerID: timerID}, nil
}

func (c *SlideshowCard) Enter() {
	c.showSlide()
	c.env.Platform.SetTimer(c.delayMs, c.timerID)
}

// Index reports the current slide for shells that inspect it.
func (c *SlideshowCard) Index() int { return c.index }

func (c *SlideshowCard) showSlide() {
	c.env.Renderer.ClearPlane(gfx.PlaneBack)
	c.env.Renderer.ClearPlane(gfx.PlaneFore)
	img, err := boltlib.LoadImage(c.env.Container, c.ids[c.index])
	if err != nil {
		c.env.Log.Warn().Err(err).Int("slide", c.index).Msg("bad slide image")
	} else {
		c.env.Renderer.PlaneSurface(gfx.PlaneFore).DrawImage(img, image.Point{}, false)
	}
	c.env.Renderer.MarkDirty()
}

func (c *SlideshowCard) HandleMsg(msg types.Msg) types.Outcome {
	switch msg.Kind {
	case types.MsgTimer:
		if msg.Num != c.timerID {
			return types.Outcome{Kind: types.Continue}
		}
		c.index++
		if c.index >= len(c.ids) {
			return types.Outcome{Kind: types.End}
		}
		c.showSlide()
		c.env.Platform.SetTimer(c.delayMs, c.timerID)
		return types.Outcome{Kind: types.Continue}
	case types.MsgClick:
		return types.Outcome{Kind: types.End}
	default:
		return types.Outcome{Kind: types.Continue}
	}
}
