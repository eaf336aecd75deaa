package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MaximVirta/trento/internal/collider"
	"github.com/MaximVirta/trento/internal/config"
	"github.com/MaximVirta/trento/internal/event"
	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/nucleus"
	"github.com/MaximVirta/trento/internal/output"
	"github.com/MaximVirta/trento/internal/platform/tui"
	"github.com/MaximVirta/trento/internal/random"
	"github.com/MaximVirta/trento/internal/storage"
)

var (
	flagEvents       int
	flagBMin         float64
	flagBMax         float64
	flagNcoll        bool
	flagToCollide    bool
	flagSoftCap      int
	flagWidth        float64
	flagCrossSection float64
	flagFluct        float64
	flagMinDist      float64
	flagBeta2Mean    float64
	flagBeta2Std     float64
	flagBeta3        float64
	flagBeta4        float64
	flagGammaMean    float64
	flagGammaStd     float64
	flagGridMax      float64
	flagGridStep     float64
	flagReducedP     float64
	flagNorm         float64
	flagOutput       string
	flagNoDB         bool
	flagQuiet        bool
	flagWatch        bool
)

var runCmd = &cobra.Command{
	Use:   "run [projectile projectile]",
	Short: "Generate collision events",
	Long: `Generate minimum-bias collision events for a projectile pair.

The projectile pair and all physics parameters default to the run
configuration file; command-line flags override it. Events are printed
as aligned columns (event number, b, Npart, Ncoll, attempts,
multiplicity, e2..e5) and stored in the events database unless --no-db
is given.

Examples:
  trento run
  trento run Pb Pb --events 10000
  trento run p Pb --b-max 8 --ncoll --to-collide
  trento run U U --beta2-mean 0.28 --beta2-std 0.02 --watch
  trento run Au Au --output events.dat --quiet`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagEvents, "events", 0, "Number of events to generate")
	runCmd.Flags().Float64Var(&flagBMin, "b-min", 0, "Minimum impact parameter (fm)")
	runCmd.Flags().Float64Var(&flagBMax, "b-max", -1, "Maximum impact parameter (fm, negative = minimum-bias default)")
	runCmd.Flags().BoolVar(&flagNcoll, "ncoll", false, "Count binary collisions")
	runCmd.Flags().BoolVar(&flagToCollide, "to-collide", false, "Count attempts per accepted event")
	runCmd.Flags().IntVar(&flagSoftCap, "soft-attempt-cap", 0, "Warn when one event needs more attempts than this (0 = off)")
	runCmd.Flags().Float64Var(&flagWidth, "nucleon-width", 0, "Gaussian nucleon width (fm)")
	runCmd.Flags().Float64Var(&flagCrossSection, "cross-section", 0, "Inelastic nucleon-nucleon cross section (fm^2)")
	runCmd.Flags().Float64Var(&flagFluct, "fluctuation", 0, "Gamma fluctuation shape k (<= 0 = off)")
	runCmd.Flags().Float64Var(&flagMinDist, "min-dist", 0, "Minimum inter-nucleon distance (fm)")
	runCmd.Flags().Float64Var(&flagBeta2Mean, "beta2-mean", 0, "Quadrupole deformation mean")
	runCmd.Flags().Float64Var(&flagBeta2Std, "beta2-std", 0, "Quadrupole deformation spread")
	runCmd.Flags().Float64Var(&flagBeta3, "beta3", 0, "Octupole deformation")
	runCmd.Flags().Float64Var(&flagBeta4, "beta4", 0, "Hexadecapole deformation")
	runCmd.Flags().Float64Var(&flagGammaMean, "gamma-mean", 0, "Triaxiality angle mean (rad)")
	runCmd.Flags().Float64Var(&flagGammaStd, "gamma-std", 0, "Triaxiality angle spread (rad)")
	runCmd.Flags().Float64Var(&flagGridMax, "grid-max", 0, "Profile grid half-width (fm)")
	runCmd.Flags().Float64Var(&flagGridStep, "grid-step", 0, "Profile grid cell size (fm)")
	runCmd.Flags().Float64Var(&flagReducedP, "reduced-thickness", 0, "Generalized-mean order p")
	runCmd.Flags().Float64Var(&flagNorm, "norm", 0, "Overall normalization")
	runCmd.Flags().StringVar(&flagOutput, "output", "", "Write event columns to this file instead of stdout")
	runCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Skip storing events in the database")
	runCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Suppress per-event output")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "Show a live progress view instead of event columns")
}

func runRun(cmd *cobra.Command, args []string) error {
	spec, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &spec, args)

	if err := spec.Validate(); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "trento"})

	// One stream per run; every stochastic component draws from it.
	stream := random.New(spec.Seed)

	common, err := nucleon.NewCommon(nucleon.Params{
		Width:        spec.Nucleon.Width,
		CrossSection: spec.Nucleon.CrossSection,
		FluctShape:   spec.Nucleon.FluctShape,
		MinDist:      spec.Nucleon.MinDist,
	}, stream)
	if err != nil {
		return err
	}

	nucA, err := createNucleus(spec, spec.Projectiles[0], common.MinDist(), stream)
	if err != nil {
		return err
	}
	nucB, err := createNucleus(spec, spec.Projectiles[1], common.MinDist(), stream)
	if err != nil {
		return err
	}

	profiler, err := event.NewComputer(event.Options{
		GridMax:  spec.Grid.Max,
		GridStep: spec.Grid.Step,
		P:        spec.Thickness.P,
		Norm:     spec.Thickness.Norm,
	})
	if err != nil {
		return err
	}

	var sinks []collider.Sink
	var textOut *output.TextWriter
	if flagOutput != "" {
		textOut, err = output.NewFileWriter(flagOutput)
		if err != nil {
			return err
		}
		defer textOut.Close()
		sinks = append(sinks, textOut)
	} else if !flagQuiet && !flagWatch {
		sinks = append(sinks, output.NewTextWriter(os.Stdout))
	}

	var store *storage.Store
	if !flagNoDB {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("could not open events database", "error", err)
			// Continue without storage - the run still works
		} else {
			defer store.Close()
			sink, sinkErr := store.NewEventSink(storage.RunMeta{
				ProjectileA: spec.Projectiles[0],
				ProjectileB: spec.Projectiles[1],
				NEvents:     spec.NEvents,
				Seed:        stream.Seed(),
				BMin:        spec.Impact.BMin,
				BMax:        spec.Impact.BMax,
			})
			if sinkErr != nil {
				return sinkErr
			}
			sinks = append(sinks, sink)
		}
	}

	engineCfg := collider.Config{
		NucleusA:       nucA,
		NucleusB:       nucB,
		Common:         common,
		RNG:            stream,
		NEvents:        spec.NEvents,
		BMin:           spec.Impact.BMin,
		BMax:           spec.Impact.BMax,
		CalcNcoll:      spec.Counters.Ncoll,
		CalcToColl:     spec.Counters.ToCollide,
		SoftAttemptCap: spec.Counters.SoftCap,
		Profiler:       profiler,
		Sinks:          sinks,
		Logger:         logger,
	}

	if flagWatch {
		return runWatched(engineCfg, spec.NEvents)
	}

	engine, err := collider.New(engineCfg)
	if err != nil {
		return err
	}

	logger.Info("starting run",
		"projectiles", fmt.Sprintf("%s+%s", spec.Projectiles[0], spec.Projectiles[1]),
		"events", spec.NEvents,
		"seed", stream.Seed(),
		"b-max", engine.BMax(),
	)

	if err := engine.RunEvents(); err != nil {
		return err
	}

	logger.Info("run complete", "events", spec.NEvents)
	return nil
}

// runWatched runs the engine in a goroutine while a live monitor renders
// progress in the terminal. Quitting the monitor only detaches the view:
// the run completes before the process exits.
func runWatched(cfg collider.Config, nevents int, opts ...tea.ProgramOption) error {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	p := tea.NewProgram(tui.NewMonitorModel(nevents), opts...)
	cfg.Sinks = append(cfg.Sinks, tui.NewProgramSink(p))

	engine, err := collider.New(cfg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		runErr := engine.RunEvents()
		done <- runErr
		p.Send(tui.DoneMsg{Err: runErr})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}
	return <-done
}

// createNucleus samples this nucleus's deformation parameters and builds
// it. When no deformation is configured at all, the species defaults
// apply.
func createNucleus(spec config.RunSpec, species string, minDist float64, stream *random.Stream) (*nucleus.Nucleus, error) {
	d := spec.Deformation

	beta2 := stream.Normal(d.Beta2Mean, d.Beta2Std)
	gamma := stream.Normal(d.GammaMean, d.GammaStd)
	beta3 := d.Beta3
	beta4 := d.Beta4

	if d.Beta2Mean == 0 && d.Beta2Std == 0 && d.Beta3 == 0 && d.Beta4 == 0 {
		beta2, beta3, beta4 = nucleus.DefaultDeformation(species)
	}

	return nucleus.Create(species, minDist, beta2, beta3, beta4, gamma, stream)
}

// applyRunFlags overrides configuration values with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, spec *config.RunSpec, args []string) {
	if len(args) == 2 {
		spec.Projectiles = args
	}

	flags := cmd.Flags()
	if flags.Changed("events") {
		spec.NEvents = flagEvents
	}
	if cmd.Root().PersistentFlags().Changed("seed") {
		spec.Seed = flagSeed
	}
	if flags.Changed("b-min") {
		spec.Impact.BMin = flagBMin
	}
	if flags.Changed("b-max") {
		spec.Impact.BMax = flagBMax
	}
	if flags.Changed("ncoll") {
		spec.Counters.Ncoll = flagNcoll
	}
	if flags.Changed("to-collide") {
		spec.Counters.ToCollide = flagToCollide
	}
	if flags.Changed("soft-attempt-cap") {
		spec.Counters.SoftCap = flagSoftCap
	}
	if flags.Changed("nucleon-width") {
		spec.Nucleon.Width = flagWidth
	}
	if flags.Changed("cross-section") {
		spec.Nucleon.CrossSection = flagCrossSection
	}
	if flags.Changed("fluctuation") {
		spec.Nucleon.FluctShape = flagFluct
	}
	if flags.Changed("min-dist") {
		spec.Nucleon.MinDist = flagMinDist
	}
	if flags.Changed("beta2-mean") {
		spec.Deformation.Beta2Mean = flagBeta2Mean
	}
	if flags.Changed("beta2-std") {
		spec.Deformation.Beta2Std = flagBeta2Std
	}
	if flags.Changed("beta3") {
		spec.Deformation.Beta3 = flagBeta3
	}
	if flags.Changed("beta4") {
		spec.Deformation.Beta4 = flagBeta4
	}
	if flags.Changed("gamma-mean") {
		spec.Deformation.GammaMean = flagGammaMean
	}
	if flags.Changed("gamma-std") {
		spec.Deformation.GammaStd = flagGammaStd
	}
	if flags.Changed("grid-max") {
		spec.Grid.Max = flagGridMax
	}
	if flags.Changed("grid-step") {
		spec.Grid.Step = flagGridStep
	}
	if flags.Changed("reduced-thickness") {
		spec.Thickness.P = flagReducedP
	}
	if flags.Changed("norm") {
		spec.Thickness.Norm = flagNorm
	}
}
