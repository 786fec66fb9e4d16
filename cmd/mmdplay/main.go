package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-mmd/engine"
	"github.com/Carmen-Shannon/oxy-mmd/engine/animator"
	"github.com/Carmen-Shannon/oxy-mmd/engine/config"
	"github.com/Carmen-Shannon/oxy-mmd/engine/loader"
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"github.com/Carmen-Shannon/oxy-mmd/engine/scene"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a JSON config file")
	modelPath := flag.String("model", "", "Path to the .pmd model")
	motionPath := flag.String("motion", "", "Path to the .vmd motion (optional)")
	frames := flag.Int("frames", 0, "Number of ticks to run (default: 300)")
	frameRate := flag.Float64("fps", 0, "Motion frames per second (default: 30)")
	tickRate := flag.Float64("tick", 0, "Engine ticks per second in realtime mode (default: 60)")
	speed := flag.Float64("speed", 0, "Playback speed multiplier (default: 1)")
	instances := flag.Int("instances", 0, "Number of model instances to animate (default: 1)")
	workers := flag.Int("workers", 0, "Number of scene worker goroutines (default: NumCPU-1)")
	stagger := flag.Int("stagger", 0, "Delay each instance's motion by this many more frames than the last")
	loop := flag.Bool("loop", true, "Loop the motion")
	ik := flag.Bool("ik", true, "Solve IK chains")
	realtime := flag.Bool("realtime", false, "Run the engine tick loop instead of stepping as fast as possible")
	profile := flag.Bool("profile", false, "Log update rate and memory statistics")
	verbose := flag.Bool("v", false, "Log loader summaries")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file; booleans only when given explicitly.
	flags := config.Flags{
		ModelPath:  *modelPath,
		MotionPath: *motionPath,
		Frames:     *frames,
		FrameRate:  *frameRate,
		TickRate:   *tickRate,
		Speed:      *speed,
		Instances:  *instances,
		Workers:    *workers,
		Stagger:    *stagger,
		Realtime:   *realtime,
		Profile:    *profile,
		Verbose:    *verbose,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "loop":
			flags.Loop = loop
		case "ik":
			flags.IK = ik
		}
	})
	cfg.Resolve(flags)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: no model given. Use -model or model_path in the config file.")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ld := loader.NewLoader(loader.WithVerbose(cfg.Verbose))
	m, err := ld.LoadModel(cfg.ModelPath)
	if err != nil {
		return err
	}
	var motion *model.Motion
	if cfg.MotionPath != "" {
		if motion, err = ld.LoadMotion(cfg.MotionPath); err != nil {
			return err
		}
	}

	animators := make([]animator.Animator, cfg.Instances)
	for i := range animators {
		instanceMotion, err := staggeredMotion(motion, i, cfg.Stagger)
		if err != nil {
			return err
		}
		a, err := animator.NewAnimator(m,
			animator.WithLabel(fmt.Sprintf("%s#%d", m.Name(), i)),
			animator.WithMotion(instanceMotion),
			animator.WithFrameRate(float32(cfg.FrameRate)),
			animator.WithSpeed(float32(cfg.Speed)),
			animator.WithLoop(*cfg.Loop),
			animator.WithIKEnabled(*cfg.IK),
		)
		if err != nil {
			return err
		}
		animators[i] = a
	}

	sc := scene.NewScene("mmdplay",
		scene.WithActive(true),
		scene.WithAnimators(animators...),
		scene.WithComputeWorkers(cfg.Workers),
	)

	var uploaded uint64
	eng := engine.NewEngine(
		engine.WithScene(0, sc),
		engine.WithTickRate(cfg.TickRate),
		engine.WithProfiling(cfg.Profile),
	)
	eng.SetTickCallback(func(float32) {
		// Drain the staged uploads a renderer would submit.
		for _, w := range sc.StagedWriteData() {
			uploaded += uint64(len(w.Data))
		}
		if cfg.Realtime && eng.Ticks() >= uint64(cfg.Frames) {
			eng.Quit()
		}
	})

	log.Printf("[mmdplay] %d instance(s) of %q, %d bones, %d IK chains, %d morphs",
		cfg.Instances, m.Name(), len(m.Skeleton().Bones), len(m.Skeleton().IKChains), len(m.Morphs()))

	if cfg.Realtime {
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(interrupts)
		go func() {
			if _, ok := <-interrupts; ok {
				eng.Quit()
			}
		}()
		eng.Run()
	} else {
		// Fixed steps of one motion frame each.
		dt := float32(1 / cfg.FrameRate)
		for range cfg.Frames {
			eng.Step(dt)
		}
	}

	log.Printf("[mmdplay] %d ticks, %d bytes staged for upload", eng.Ticks(), uploaded)
	return writeSummary(os.Stdout, m, animators[0])
}

// staggeredMotion returns the shared motion for instance 0 and a private copy delayed by
// instance*stagger frames for the rest, so the cached motion is never edited.
func staggeredMotion(motion *model.Motion, instance, stagger int) (*model.Motion, error) {
	if motion == nil || instance == 0 || stagger <= 0 {
		return motion, nil
	}
	c, err := motion.Clone()
	if err != nil {
		return nil, err
	}
	c.Shift(int32(instance * stagger))
	return c, nil
}
