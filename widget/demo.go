package widget

import (
	"context"
	"math"
	"time"

	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/svg"
)

// DemoHandId is the id of the hand in the Demo drawing.
const DemoHandId = "hand"

// Demo returns a 200x200 drawing of a clock face with one hand.
func Demo() *svg.Element {
	root := svg.New(200, 200)
	face := root.Group().SetId("face")
	face.Circle(100, 100, 90).Fill("whitesmoke")
	for i := 0; i < 12; i++ {
		face.Line(100, 14, 100, 24).RotateAround(float64(i*30), 100, 100)
	}
	face.Stroke("black")
	root.Line(100, 100, 100, 30).SetId(DemoHandId).Stroke("crimson").StrokeWidth(3)
	root.Text(100, 195, "nbsvg").Set("text_anchor", "middle")
	return root
}

// Animate turns the hand of a Demo drawing by degreesPerTick at every interval, until ctx is done.
// Each step changes the drawing, so a widget bound to it updates its model.
func Animate(ctx context.Context, drawing *svg.Element, interval time.Duration, degreesPerTick float64) {
	hand := drawing.Select(svg.AttrEquals("id", DemoHandId))
	if hand == nil {
		common.Panicf("widget.Animate(): drawing has no element with id %q", DemoHandId)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var angle float64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			angle = math.Mod(angle+degreesPerTick, 360)
			hand.RotateAround(angle, 100, 100)
		}
	}
}
