// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"
	"unsafe"

	"github.com/devblok/trigon/assets"
	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/core/renderer"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/driver/vulkan"
	"github.com/devblok/trigon/platform"
	"github.com/devblok/trigon/platform/backend"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Window systems want their events polled from the main thread
	runtime.LockOSThread()
}

var (
	configFiles   = flag.String("config", ".env", "Comma separated dotenv files to read the configuration from")
	debug         = flag.Bool("vkdbg", false, "Enable the Vulkan validation layer and debug logging")
	cpuProfile    = flag.String("cpuprof", "", "Write cpu profile to file")
	memProfile    = flag.String("memprof", "", "Write memory profile to file")
	traceFile     = flag.String("trace", "", "Write execution trace to file")
	logFile       = flag.String("log", "", "Write the log to file instead of stderr")
	background    = flag.Bool("background", false, "Render on a dedicated goroutine, window and events included. Not supported with glfw outside linux")
	windowSystem  = flag.String("window-system", "", "Window system to use, sdl or glfw")
	frameRateFlag = flag.Int("fps", -1, "Override the target frame rate, 0 is unlimited")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	closeLog, err := setupLogging()
	if err != nil {
		log.WithError(err).Error("Cannot open log file")
		return 1
	}
	defer closeLog()

	stopProfiling, err := startProfiling()
	if err != nil {
		log.WithError(err).Error("Cannot start profiling")
		return 1
	}
	defer stopProfiling()

	cfg, err := core.LoadConfig(strings.Split(*configFiles, ",")...)
	if err != nil {
		log.WithError(err).Error("Cannot load configuration")
		return 1
	}
	if *debug {
		cfg.DebugLevel = core.DebugLevelDebug
	}
	if *frameRateFlag >= 0 {
		cfg.TargetFrameRate = *frameRateFlag
	}
	if cfg.DebugLevel == core.DebugLevelDebug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.API != core.Vulkan {
		log.WithField("api", cfg.API).Error(core.ErrUnsupportedAPI)
		return 1
	}

	loader, closeLoader, err := assets.Open(cfg.ShaderSource)
	if err != nil {
		log.WithError(err).Error("Cannot open shaders")
		return 1
	}
	defer closeLoader()

	name := *windowSystem
	if name == "" {
		name = cfg.WindowSystem
	}
	if name, err = backend.Normalize(name); err != nil {
		log.WithError(err).Error("Cannot pick window system")
		return 1
	}
	if err := checkBackground(*background, name, runtime.GOOS); err != nil {
		log.WithError(err).Error("Cannot render in the background")
		return 1
	}

	tracker := platform.NewErrorTracker(log.StandardLogger())
	system, err := backend.Open(name, tracker)
	if err != nil {
		log.WithError(tracker.Annotate(err)).Error("Cannot initialise window system")
		return 1
	}
	defer system.Terminate()

	logger := log.WithField("window-system", name)
	vk := renderer.NewVulkanRenderer(system, newVulkanAPI, loader, logger)

	start := time.Now()
	if *background {
		if err := runInBackground(vk, cfg, logger); err != nil {
			log.WithError(tracker.Annotate(err)).Error("Renderer failed")
			return 1
		}
	} else {
		if err := vk.Initialize(cfg); err != nil {
			logger.WithError(tracker.Annotate(err)).Error("Renderer initialisation failed")
			vk.Shutdown()
			return 1
		}
		vk.Run()
		vk.Shutdown()
	}
	reportFrames(vk, time.Since(start))

	if err := writeHeapProfile(); err != nil {
		log.WithError(err).Error("Cannot write memory profile")
		return 1
	}
	return 0
}

func newVulkanAPI(procAddr unsafe.Pointer) (driver.API, error) {
	api, err := vulkan.New(procAddr)
	if err != nil {
		return nil, err
	}
	return api, nil
}

// checkBackground refuses background rendering where the window system
// needs window and event calls on the main thread. The background
// renderer creates the window and polls events on its own locked thread,
// which SDL allows and GLFW only allows on linux.
func checkBackground(background bool, windowSystem, goos string) error {
	if background && windowSystem == backend.GLFW && goos != "linux" {
		return errors.Errorf("glfw needs the main thread on %s, use sdl or drop -background", goos)
	}
	return nil
}

// runInBackground renders on a locked goroutine until the window closes
// or an interrupt arrives. The main thread stays locked and idle.
func runInBackground(r core.Renderer, cfg core.RendererConfig, logger log.FieldLogger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		select {
		case <-interrupts:
			logger.Info("Interrupted")
			cancel()
		case <-ctx.Done():
		}
	}()

	b := core.NewBackgroundRenderer(r, logger)
	b.Start(ctx, cfg)
	return b.Join()
}

func reportFrames(vk *renderer.Vulkan, elapsed time.Duration) {
	presented, rebuilds := vk.FrameStats()
	entry := log.WithFields(log.Fields{
		"presented": presented,
		"rebuilds":  rebuilds,
		"elapsed":   elapsed.Round(time.Millisecond),
		"cgo-calls": runtime.NumCgoCall(),
	})
	if secs := elapsed.Seconds(); secs > 0 {
		entry = entry.WithField("fps", float64(presented)/secs)
	}
	entry.Info("Renderer finished")
}

func setupLogging() (func(), error) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *logFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func startProfiling() (func(), error) {
	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, err
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			stop()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			f.Close()
			stop()
			return nil, err
		}
		stops = append(stops, func() {
			trace.Stop()
			f.Close()
		})
	}
	return stop, nil
}

func writeHeapProfile() error {
	if *memProfile == "" {
		return nil
	}
	f, err := os.Create(*memProfile)
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.WriteHeapProfile(f)
}
