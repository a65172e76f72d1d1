package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"terrastream/internal/asset"
	"terrastream/internal/config"
	"terrastream/internal/entity"
	"terrastream/internal/graphics"
	"terrastream/internal/input"
	"terrastream/internal/jobs"
	"terrastream/internal/logging"
	"terrastream/internal/player"
	"terrastream/internal/render"
	"terrastream/internal/stream"
	"terrastream/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	winWidth  = 1280
	winHeight = 720
)

type app struct {
	log logging.Logger
	cfg *config.Streaming

	window   *glfw.Window
	input    *input.Manager
	camera   *player.Camera
	uploader *graphics.Uploader
	renderer *graphics.Renderer

	genQueue *jobs.Queue
	ioQueue  *jobs.Queue
	assets   *asset.Context
	chunks   *terrain.ChunkTable
	streamer *stream.Streamer
	entities []entity.Entity
	limiter  *fpsLimiter
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winWidth, winHeight, "terrastream", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	// the frame limiter paces the loop
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

func newApp(log logging.Logger, cfg *config.Streaming, terrainCfg *config.Terrain, assetDir, rockTint string) (*app, error) {
	var tint *mgl32.Vec4
	if rockTint != "" {
		t, err := render.ParseTint(rockTint)
		if err != nil {
			return nil, err
		}
		tint = &t
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	window, err := setupWindow()
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	a := &app{
		log:      log,
		cfg:      cfg,
		window:   window,
		input:    input.NewManager(),
		camera:   player.NewCamera(winWidth, winHeight),
		uploader: graphics.NewUploader(),
		limiter:  &fpsLimiter{},
	}
	a.renderer, err = graphics.NewRenderer(a.uploader)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	w, h := window.GetFramebufferSize()
	a.renderer.SetViewport(w, h)

	genCap, genWorkers := cfg.GenerateQueue()
	if genWorkers == 0 {
		a.genQueue = jobs.NewGenerationQueue(genCap)
	} else {
		a.genQueue = jobs.NewQueue("generate", genCap, genWorkers)
	}
	ioCap, ioWorkers := cfg.IOQueue()
	a.ioQueue = jobs.NewIOQueue(ioCap, ioWorkers)

	var files asset.FileReader
	if assetDir != "" {
		files = asset.DirReader{Root: assetDir}
	}
	a.assets = &asset.Context{
		Files:    files,
		Uploader: a.uploader,
		IO:       a.ioQueue,
		Generate: a.genQueue,
		Log:      log,
	}
	gen := terrain.NewGenerator(terrainCfg.Seed())
	a.chunks = terrain.NewChunkTable(cfg.TableCapacity(), gen)
	a.streamer = stream.New(a.assets, a.chunks, cfg, log)
	a.streamer.GroundShader = graphics.ShaderGround
	a.streamer.PropShader = graphics.ShaderProp
	if assetDir != "" {
		if _, err := os.Stat(filepath.Join(assetDir, "ground.png")); err == nil {
			a.streamer.GroundTexture = asset.NewTexture("ground.png")
		}
	}

	a.entities = scatterProps(gen, terrainCfg.Seed(), assetDir, tint)
	spawn := gen.HeightAt(500, 500)
	a.camera.Position = mgl32.Vec3{500, 500, spawn + 300}

	a.bindInput()
	log.Infof("seed %d, view distance %d chunks, %d generation workers, %d props",
		terrainCfg.Seed(), cfg.ViewDistance(), a.genQueue.Workers(), len(a.entities))
	return a, nil
}

func (a *app) bindInput() {
	a.input.Attach(a.window)
	a.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		a.camera.HandleMouseMovement(x, y)
	})
	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		a.renderer.SetViewport(w, h)
		a.camera.Resize(w, h)
	})
}

// scatterProps places rocks and lamps around the spawn. Rocks load from
// rock.obj when an asset directory is given and are generated otherwise.
// A nil tint gives every rock its own shade.
func scatterProps(gen *terrain.Generator, seed int64, assetDir string, tint *mgl32.Vec4) []entity.Entity {
	rng := rand.New(rand.NewSource(seed))
	rock := asset.NewGeneratedModel("rock", rockMesh)
	if assetDir != "" {
		if _, err := os.Stat(filepath.Join(assetDir, "rock.obj")); err == nil {
			rock = asset.NewModel("rock.obj")
		}
	}
	var out []entity.Entity
	for i := range 200 {
		x := rng.Float32()*8000 - 4000
		y := rng.Float32()*8000 - 4000
		p := entity.NewProp(fmt.Sprintf("rock%d", i), rock, mgl32.Vec3{x, y, gen.HeightAt(float64(x), float64(y))})
		p.Scale = 5 + rng.Float32()*25
		p.Rotation = mgl32.QuatRotate(rng.Float32()*2*math.Pi, mgl32.Vec3{0, 0, 1})
		p.Tint = render.Tint(rockColor(rng), 1)
		if tint != nil {
			p.Tint = *tint
		}
		out = append(out, p)
	}
	for i := range 8 {
		a := float64(i) / 8 * 2 * math.Pi
		x, y := float32(500+1500*math.Cos(a)), float32(500+1500*math.Sin(a))
		out = append(out, entity.NewPointLight(fmt.Sprintf("lamp%d", i),
			mgl32.Vec3{x, y, gen.HeightAt(float64(x), float64(y)) + 20}, mgl32.Vec3{1, 0.8, 0.5}, 200))
	}
	return out
}

func (a *app) closeQueues() {
	a.genQueue.Close()
	a.ioQueue.Close()
}

func (a *app) dispose() {
	a.closeQueues()
	a.renderer.Dispose()
	a.uploader.Close()
	glfw.Terminate()
}
