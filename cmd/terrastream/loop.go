package main

import (
	"time"

	"terrastream/internal/entity"
	"terrastream/internal/graphics"
	"terrastream/internal/input"
	"terrastream/internal/profiling"
	"terrastream/internal/render"
	"terrastream/internal/stream"
	"terrastream/internal/terrain"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	flySpeed    = 400 // world units per second
	boostFactor = 8
	eyeHeight   = 30
	slowFrame   = 25 * time.Millisecond
)

func (a *app) run() {
	var (
		frames      int
		lastReport  = time.Now()
		lastTime    = time.Now()
		wireframe   bool
		showStats   bool
		followFloor = true
		last        stream.Stats
	)

	for !a.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if a.input.JustPressed(input.ActionQuit) {
			a.window.SetShouldClose(true)
		}
		if a.input.JustPressed(input.ActionToggleLODTint) {
			a.cfg.SetDebugLODTint(!a.cfg.DebugLODTint())
		}
		if a.input.JustPressed(input.ActionToggleWireframe) {
			wireframe = !wireframe
		}
		if a.input.JustPressed(input.ActionToggleStats) {
			showStats = !showStats
		}
		if a.input.JustPressed(input.ActionToggleFollowGround) {
			followFloor = !followFloor
		}
		if a.input.JustPressed(input.ActionViewCloser) {
			a.cfg.SetViewDistance(a.cfg.ViewDistance() - 1)
		}
		if a.input.JustPressed(input.ActionViewFarther) {
			a.cfg.SetViewDistance(a.cfg.ViewDistance() + 1)
		}

		func() {
			defer profiling.Track("app.update")()
			a.moveCamera(float32(dt), followFloor)
			for _, e := range a.entities {
				e.Update(dt)
			}
			a.entities = entity.Sweep(a.entities)
		}()

		cam := stream.Camera{
			Position:   a.camera.Position,
			View:       a.camera.ViewMatrix(),
			Projection: a.camera.ProjectionMatrix(),
		}
		frame := a.streamer.Frame(cam, a.entities)
		depth := a.streamer.ShadowPass(cam, a.entities, graphics.ShaderDepth)
		if wireframe {
			for i := range frame.Commands {
				frame.Commands[i].Flags |= render.FlagWireframe
			}
		}

		a.renderer.Clear()
		if !wireframe {
			a.renderer.DepthPrepass(depth, cam.View, cam.Projection)
		}
		a.renderer.Draw(frame.Commands, cam.View, cam.Projection)

		func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
		a.input.PostUpdate()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

		frames++
		last = frame.Stats
		if took := time.Since(now); took > slowFrame {
			a.log.Debugf("slow frame %.1fms (%d uploads, %.1fms in glfw): %s",
				float64(took.Microseconds())/1000, profiling.Count("asset.upload"),
				float64(profiling.SumWithPrefix("glfw.").Microseconds())/1000, profiling.TopN(5))
		}
		if time.Since(lastReport) >= time.Second {
			if showStats {
				a.log.Infof("fps %d, chunks %d (%d culled), drawn %d, pending %d, deferred %d, failed %d, reclaimed %d, lights %d, queued %d/%d",
					frames, a.chunks.Len(), last.Culled, last.Visible, last.Pending, last.Deferred,
					last.Failed, last.Reclaimed, last.Lights, a.genQueue.Pending(), a.ioQueue.Pending())
				a.log.Infof("rebinds: %d shaders, %d textures, %d meshes",
					last.ShaderSwitches, last.TextureSwitches, last.MeshSwitches)
				if hit, ok := a.chunks.RaycastGround(a.camera.Position, a.camera.Front(), 20000); ok {
					a.log.Infof("looking at ground %.0f %.0f %.0f", hit[0], hit[1], hit[2])
				}
			}
			frames = 0
			lastReport = time.Now()
		}

		a.limiter.Wait(a.cfg.FPSLimit())
	}
}

func (a *app) moveCamera(dt float32, followFloor bool) {
	speed := float32(flySpeed)
	if a.input.IsActive(input.ActionBoost) {
		speed *= boostFactor
	}
	a.camera.Move(
		a.input.Axis(input.ActionMoveForward, input.ActionMoveBackward)*speed*dt,
		a.input.Axis(input.ActionMoveRight, input.ActionMoveLeft)*speed*dt,
		a.input.Axis(input.ActionMoveUp, input.ActionMoveDown)*speed*dt,
	)
	if !followFloor {
		return
	}
	p := a.camera.Position
	cx, cy := terrain.WorldToChunk(p[0], p[1])
	c := a.chunks.GetChunkAt(cx, cy)
	if floor := c.HeightAt(a.chunks.Generator(), p[0], p[1]) + eyeHeight; p[2] < floor {
		a.camera.Position[2] = floor
	}
}
