package main

import (
	"flag"
	"runtime"

	"terrastream/internal/config"
	"terrastream/internal/logging"

	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	assets := flag.String("assets", "", "directory with prop models (OBJ) and textures")
	debug := flag.Bool("debug", false, "enable debug logging")
	rockTint := flag.String("rock-tint", "", "hex colour for every rock, e.g. #8a7f70 (random shades when empty)")
	flag.Parse()

	log := logging.New("terrastream", *debug)
	cfg := config.FromEnv()
	terrainCfg := config.TerrainFromEnv()

	app, err := newApp(log, cfg, terrainCfg, *assets, *rockTint)
	if err != nil {
		log.Errorf("setup: %v", err)
		closer.Exit(1)
	}
	// Worker shutdown is safe from the signal goroutine; GL objects are
	// released by the loop on the main thread.
	closer.Bind(app.closeQueues)

	app.run()
	app.dispose()
}
