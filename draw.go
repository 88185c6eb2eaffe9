package csm

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soypat/csm/internal/parallel"
	"github.com/soypat/glgl/math/ms3"
)

// DrawConfig configures a DrawContext. The zero value is a valid
// single threaded configuration.
type DrawConfig struct {
	// Workers is the number of goroutines rasterizing a draw. Values below 2
	// rasterize on the calling goroutine as each triangle is produced.
	Workers int
	// ClipZ is the view space z of the near clip plane. It must be negative.
	// Zero selects DefaultClipZ.
	ClipZ float32
}

// DrawStats summarizes the most recent draw of a DrawContext.
type DrawStats struct {
	Instances int
	// Triangles is the number of mesh triangles sent through the vertex stage.
	Triangles int
	Culled    int
	// Clipped counts triangles split by the near plane.
	Clipped int
	// Rasterized counts triangles handed to the raster stage, including
	// the extra triangles produced by clipping.
	Rasterized int
	RasterStats
}

// DrawContext draws render classes into one target. It owns the per-draw
// scratch memory and, when configured with several workers, the raster
// worker pool. Draws on one DrawContext are serialized; use one context per
// goroutine to draw into different targets concurrently.
type DrawContext struct {
	mu       sync.Mutex
	target   *RenderTarget
	clip     ClipPlane
	pool     *parallel.Pool
	bands    []RasterContext
	tasks    []func()
	arena    triArena
	inputs   drawInputs
	vc       VertexContext
	lastDraw time.Duration
	stats    DrawStats
}

// NewDrawContext returns a context drawing into target.
func NewDrawContext(target *RenderTarget, cfg DrawConfig) (*DrawContext, error) {
	if target == nil {
		return nil, errMsg(ErrNilResource, "draw target")
	}
	if cfg.ClipZ == 0 {
		cfg.ClipZ = DefaultClipZ
	} else if !(cfg.ClipZ < 0) {
		return nil, errMsg(ErrInvalidDimensions, fmt.Sprintf("clip plane z=%g must be negative", cfg.ClipZ))
	}
	workers := max(cfg.Workers, 1)
	workers = min(workers, target.height)
	dc := &DrawContext{
		target: target,
		clip:   ClipPlane{Z: cfg.ClipZ},
		bands:  make([]RasterContext, workers),
	}
	bandHeight := (target.height + workers - 1) / workers
	for i := range dc.bands {
		b := &dc.bands[i]
		b.Target = target
		b.MinY = i * bandHeight
		b.MaxY = min((i+1)*bandHeight, target.height)
		b.frag.inputs = &dc.inputs
	}
	dc.vc.inputs = &dc.inputs
	if workers > 1 {
		dc.pool = parallel.NewPool(workers)
		dc.tasks = make([]func(), dc.pool.Workers())
		for i := range dc.tasks {
			band := &dc.bands[i]
			dc.tasks[i] = func() { dc.rasterizeBand(band) }
		}
	}
	Logger().Debug("csm: draw context", slog.Int("width", target.width), slog.Int("height", target.height),
		slog.Int("bands", len(dc.bands)), slog.Float64("clipz", float64(cfg.ClipZ)))
	return dc, nil
}

// Target returns the render target of the context.
func (dc *DrawContext) Target() *RenderTarget { return dc.target }

// SetInput sets draw input id to a copy of values. A nil values clears it.
// Draw inputs are readable from both shader stages.
func (dc *DrawContext) SetInput(id int, values []float32) error {
	if id < 0 || id >= MaxDrawInputs {
		return errMsg(ErrBadID, fmt.Sprintf("draw input %d", id))
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if values == nil {
		dc.inputs[id] = nil
	} else {
		dc.inputs[id] = append(dc.inputs[id][:0], values...)
	}
	return nil
}

// Input returns a copy of draw input id, or nil if unset.
func (dc *DrawContext) Input(id int) []float32 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	v := dc.inputs.get(id)
	if v == nil {
		return nil
	}
	return append([]float32(nil), v...)
}

// LastDrawTime returns the wall time spent in the most recent draw.
func (dc *DrawContext) LastDrawTime() time.Duration {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.lastDraw
}

// Stats returns the statistics of the most recent draw.
func (dc *DrawContext) Stats() DrawStats {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.stats
}

// Close stops the raster workers. The context must not be used afterwards.
// Close is safe to call multiple times.
func (dc *DrawContext) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil {
		dc.pool.Close()
	}
}

// Draw draws a single instance of rc with the given instance transform.
func (dc *DrawContext) Draw(rc *RenderClass, transform ms3.Mat4) error {
	return dc.DrawInstanced(rc, []ms3.Mat4{transform})
}

// DrawInstanced draws len(transforms) instances of rc, instance i using
// transforms[i]. If the vertex stage fails the draw stops and the error is
// returned; triangles already rasterized stay in the target.
func (dc *DrawContext) DrawInstanced(rc *RenderClass, transforms []ms3.Mat4) error {
	if rc == nil || rc.mesh == nil {
		return errMsg(ErrNilResource, "render class")
	}
	if len(transforms) == 0 {
		return errMsg(ErrInvalidDimensions, "no instances to draw")
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil && !dc.pool.IsRunning() {
		return errMsg(ErrClosed, rc.name)
	}
	start := time.Now()
	err := dc.drawInstanced(rc, transforms)
	dc.lastDraw = time.Since(start)
	log := Logger()
	if err != nil {
		log.Debug("csm: draw failed", slog.String("class", rc.name), slog.Any("err", err))
		return err
	}
	log.Debug("csm: draw",
		slog.String("class", rc.name),
		slog.Int("instances", dc.stats.Instances),
		slog.Int("triangles", dc.stats.Triangles),
		slog.Int("culled", dc.stats.Culled),
		slog.Int("clipped", dc.stats.Clipped),
		slog.Int("fragments", dc.stats.Fragments),
		slog.Int("written", dc.stats.Written),
		slog.Duration("elapsed", dc.lastDraw),
	)
	return nil
}

func (dc *DrawContext) drawInstanced(rc *RenderClass, transforms []ms3.Mat4) error {
	dc.stats = DrawStats{Instances: len(transforms)}
	dc.arena.reset()
	for i := range dc.bands {
		dc.bands[i].Stats = RasterStats{}
		dc.bands[i].Class = rc
	}
	immediate := dc.pool == nil
	var (
		tri     Triangle
		clipped [2]Triangle
	)
	w, h := dc.target.width, dc.target.height
	emit := func(t *Triangle, m *Material, triID, instID int) {
		Project(w, h, t)
		dc.stats.Rasterized++
		if immediate {
			band := &dc.bands[0]
			band.Material = m
			band.TriangleID = triID
			band.InstanceID = instID
			Rasterize(band, t)
			return
		}
		item := dc.arena.alloc()
		item.tri = *t
		item.material = m
		item.triangleID = triID
		item.instanceID = instID
	}
	ntri := rc.mesh.TriangleCount()
	for inst, transform := range transforms {
		for ti := 0; ti < ntri; ti++ {
			m := rc.triangleMaterial(ti)
			dc.stats.Triangles++
			if err := processTriangle(&dc.vc, rc, m, ti, inst, transform, &tri); err != nil {
				return err
			}
			switch res := dc.clip.Clip(&clipped, &tri); res {
			case ClipCull:
				dc.stats.Culled++
			case ClipUnchanged:
				tri.PrimeInverseDepth()
				emit(&tri, m, ti, inst)
			default:
				dc.stats.Clipped++
				for k := 0; k < res.Count(); k++ {
					emit(&clipped[k], m, ti, inst)
				}
			}
		}
	}
	if !immediate && dc.arena.Len() > 0 {
		dc.pool.ExecuteAll(dc.tasks)
	}
	for i := range dc.bands {
		dc.stats.add(dc.bands[i].Stats)
	}
	return nil
}

// rasterizeBand rasterizes every queued triangle, in submission order,
// into the rows owned by band.
func (dc *DrawContext) rasterizeBand(band *RasterContext) {
	dc.arena.each(func(item *rasterItem) {
		band.Material = item.material
		band.TriangleID = item.triangleID
		band.InstanceID = item.instanceID
		Rasterize(band, &item.tri)
	})
}

// Draw draws one instance of rc into target on the calling goroutine.
func Draw(target *RenderTarget, rc *RenderClass, transform ms3.Mat4) error {
	return DrawInstanced(target, rc, 1, []ms3.Mat4{transform})
}

// DrawInstanced draws count instances of rc into target on the calling
// goroutine. transforms must hold at least count elements.
func DrawInstanced(target *RenderTarget, rc *RenderClass, count int, transforms []ms3.Mat4) error {
	if count <= 0 {
		return errMsg(ErrInvalidDimensions, fmt.Sprintf("instance count %d", count))
	}
	if len(transforms) < count {
		return errMsg(ErrInvalidDimensions, fmt.Sprintf("%d transforms for %d instances", len(transforms), count))
	}
	dc, err := NewDrawContext(target, DrawConfig{})
	if err != nil {
		return err
	}
	return dc.DrawInstanced(rc, transforms[:count])
}
