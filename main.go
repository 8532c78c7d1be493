package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/image/draw"

	"github.com/jyane/jnes/nes"
	"github.com/jyane/jnes/statsview"
	"github.com/jyane/jnes/ui"
	"github.com/jyane/jnes/ui/ebitenui"
)

var (
	path       = flag.String("path", "./rom/sample1.nes", "path to NES ROM file")
	width      = flag.Int("width", 256*4, "widow width")
	height     = flag.Int("height", 240*4, "widow height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode")
	frontend   = flag.String("frontend", "glfw", "glfw, ebiten or headless")
	frames     = flag.Int("frames", 60, "frames to run in headless mode")
	screenshot = flag.String("screenshot", "", "write the last frame as PNG in headless mode")
	wavPath    = flag.String("wav", "", "record audio to a WAV file")
	stats      = flag.Bool("statsview", false, "serve runtime statistics, needs -tags statsview")
)

func init() {
	runtime.LockOSThread()
}

// savePath is where battery backed RAM of the ROM at romPath is kept.
func savePath(romPath string) string {
	return strings.TrimSuffix(romPath, ".nes") + ".sav"
}

// runHeadless runs the console for n frames without a window.
func runHeadless(console *nes.Console, n int, out string) error {
	for i := 0; i < n; i++ {
		if err := console.StepFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	glog.Infof("Ran %d frames: %v", n, console.Snapshot().CPU)
	if out == "" {
		return nil
	}
	frame, _ := console.Frame()
	dst := image.NewRGBA(image.Rect(0, 0, *width, *height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, dst)
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			glog.Warning("-statsview is ignored, rebuild with -tags statsview")
		}
	}
	buf, err := os.ReadFile(*path)
	if err != nil {
		glog.Fatalln("Failed to read: " + *path)
	}
	var opts []nes.Option
	if sav, err := os.ReadFile(savePath(*path)); err == nil {
		opts = append(opts, nes.WithSaveRAM(sav))
	} else if !errors.Is(err, fs.ErrNotExist) {
		glog.Warningf("Failed to read save data: %v", err)
	}
	if *wavPath != "" {
		recorder, err := ui.NewWAVRecorder(*wavPath)
		if err != nil {
			glog.Fatalln(err)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				glog.Errorf("Failed to write %s: %v", *wavPath, err)
			}
		}()
		opts = append(opts, nes.WithAudioRecorder(recorder.Record))
	}

	var console *nes.Console
	var emulator nes.Emulator
	if *debug {
		dc, err := nes.NewDebugConsole(buf, opts...)
		if err != nil {
			glog.Fatalln("Failed to initiate Console: ", err)
		}
		console, emulator = dc.Console, dc
	} else {
		console, err = nes.NewConsole(buf, opts...)
		if err != nil {
			glog.Fatalln("Failed to initiate Console: ", err)
		}
		emulator = console
	}

	switch *frontend {
	case "glfw":
		err = ui.Start(emulator, *width, *height)
	case "ebiten":
		err = ebitenui.Start(emulator, *width, *height)
	case "headless":
		err = runHeadless(console, *frames, *screenshot)
	default:
		err = fmt.Errorf("unknown frontend %q", *frontend)
	}
	if err != nil && !nes.IsQuit(err) {
		glog.Errorf("Stopped: %v", err)
	}
	if sav := console.SaveRAM(); sav != nil {
		if err := os.WriteFile(savePath(*path), sav, 0o644); err != nil {
			glog.Errorf("Failed to write save data: %v", err)
		}
	}
	glog.Flush()
}
