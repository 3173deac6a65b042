// Command roster builds a monthly ER/ward duty roster from a YAML
// configuration: it enumerates the month's shift slots, assigns every one
// to a doctor satisfying quota and hard-rule constraints, verifies the
// result independently, and prints it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thewbear/doembang-roster/internal/config"
	"github.com/thewbear/doembang-roster/pkg/core/calendar"
	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/quota"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/core/solver"
	"github.com/thewbear/doembang-roster/pkg/core/solver/annealsolver"
	"github.com/thewbear/doembang-roster/pkg/core/solver/cpsolver"
	"github.com/thewbear/doembang-roster/pkg/core/verifier"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
	"github.com/thewbear/doembang-roster/pkg/utils/logging"
)

// Exit codes, distinct per failure kind so a caller's shell script can tell
// them apart without scraping stderr.
const (
	exitOK             = 0
	exitInvalidInput   = 2
	exitInfeasible     = 3
	exitUnsatisfiable  = 4
	exitVerifierFailed = 5
)

var (
	configPath string
	solverName string
	seed       int64
	deadline   time.Duration
	logger     *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "roster",
		Short: "Build a monthly ER/ward duty roster",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.InitLogger("roster")
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "roster_config.yaml", "path to the roster YAML config")

	root.AddCommand(scheduleCmd())
	root.AddCommand(blankCmd())

	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Solve and print the duty roster for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			logger = logger.With(zap.String("run_id", runID))

			cfg, err := config.LoadFromPath(configPath)
			if err != nil {
				logger.Error("failed to load config", zap.Error(err))
				return rostererr.InvalidInput{Reason: err.Error()}
			}

			out, err := run(cmd.Context(), cfg)
			if err != nil {
				logger.Error("schedule run failed", zap.Error(err))
				return err
			}

			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&solverName, "solver", "cp", "solving strategy: cp or anneal")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for reproducible solving")
	cmd.Flags().DurationVar(&deadline, "deadline", 300*time.Second, "wall-clock budget before giving up")

	return cmd
}

func blankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blank",
		Short: "Print the month's unassigned slot grid, for a hand-filled template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromPath(configPath)
			if err != nil {
				return rostererr.InvalidInput{Reason: err.Error()}
			}

			holidays, err := buildHolidaySet(cfg)
			if err != nil {
				return rostererr.InvalidInput{Reason: err.Error()}
			}

			slots, _ := slot.Enumerate(cfg.Year, time.Month(cfg.Month), holidays)
			for _, sl := range slots {
				fmt.Printf("%s\t%s\t%s\t%s\t(unassigned)\n", sl.Date, sl.Post, sl.Time, sl.Period)
			}
			return nil
		},
	}
}

// run executes one full scheduling pipeline: build the month's calendar and
// quotas, enumerate slots and precheck feasibility, solve, then verify the
// result before returning it.
func run(ctx context.Context, cfg *config.Config) ([]byte, error) {
	holidays, err := buildHolidaySet(cfg)
	if err != nil {
		return nil, rostererr.InvalidInput{Reason: err.Error()}
	}

	nominal := make(map[model.Doctor]model.NominalQuota, len(cfg.Doctors))
	autopsy := make(map[model.Doctor][]model.AutopsyEntry, len(cfg.Doctors))
	nyQuota := make(map[model.Doctor]model.NYQuota)

	for _, doc := range cfg.Doctors {
		d := model.Doctor(doc.Name)
		nominal[d] = doc.Quota.ToNominalQuota()

		for _, e := range doc.Autopsy {
			entry, err := e.ToAutopsyEntry()
			if err != nil {
				return nil, rostererr.InvalidInput{Reason: err.Error()}
			}
			autopsy[d] = append(autopsy[d], entry)
		}

		if doc.NYQuota != nil {
			nyQuota[d] = model.NYQuota{NYE: doc.NYQuota.NYE, NY: doc.NYQuota.NY}
		}
	}

	adjuster, err := quota.Adjust(nominal)
	if err != nil {
		return nil, err
	}

	slots, slotCounts := slot.Enumerate(cfg.Year, time.Month(cfg.Month), holidays)
	if err := slot.CheckFeasibility(slotCounts, adjuster.AggregateByPeriodPost()); err != nil {
		return nil, err
	}

	monthStart := model.NewDate(cfg.Year, time.Month(cfg.Month), 1)
	monthEnd := slots[len(slots)-1].Date
	periods := buildPeriods(monthStart, monthEnd, holidays)

	in := solver.Input{
		Slots:                         slots,
		EffectiveQuota:                adjuster.Effective(),
		Autopsy:                       autopsy,
		Periods:                       periods,
		NYQuota:                       nyQuota,
		MonthStart:                    monthStart,
		MonthEnd:                      monthEnd,
		ChainCountsWeekendImplicitDay: cfg.Flags.ChainCountsWeekendImplicitDay,
		NYESupersedesWeekendQuota:     cfg.Flags.NYESupersedesWeekendQuota,
		AutopsyAppliesOutsideMonth:    cfg.Flags.AutopsyAppliesOutsideMonth,
		Seed:                          seed,
		Deadline:                      deadline,
	}

	s := pickSolver()
	sched, err := s.Solve(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := verifier.Verify(verifier.Input{
		Schedule:                      sched,
		Slots:                         slots,
		EffectiveQuota:                adjuster.Effective(),
		Autopsy:                       autopsy,
		NYQuota:                       nyQuota,
		Periods:                       periods,
		MonthStart:                    monthStart,
		MonthEnd:                      monthEnd,
		ChainCountsWeekendImplicitDay: cfg.Flags.ChainCountsWeekendImplicitDay,
		NYESupersedesWeekendQuota:     cfg.Flags.NYESupersedesWeekendQuota,
		AutopsyAppliesOutsideMonth:    cfg.Flags.AutopsyAppliesOutsideMonth,
	}); err != nil {
		return nil, err
	}

	return sched.MarshalJSON()
}

func pickSolver() solver.Solver {
	if solverName == "anneal" {
		return annealsolver.New()
	}
	return cpsolver.New()
}

func buildHolidaySet(cfg *config.Config) (*holidayset.Set, error) {
	var explicit []model.Date
	for _, d := range cfg.Holidays.Explicit {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("parsing holiday date %q: %w", d, err)
		}
		explicit = append(explicit, model.DateFromTime(t))
	}

	monthStart := model.NewDate(cfg.Year, time.Month(cfg.Month), 1)
	monthEnd := monthStart.Add(31)

	return holidayset.Build(holidayset.Sources{
		Explicit:   explicit,
		RRules:     cfg.Holidays.RRules,
		ICSPath:    cfg.Holidays.ICSPath,
		RangeStart: monthStart.Add(-1),
		RangeEnd:   monthEnd,
	})
}

func buildPeriods(monthStart, monthEnd model.Date, holidays *holidayset.Set) map[model.Date]model.PeriodKind {
	periods := make(map[model.Date]model.PeriodKind)
	for d := monthStart.Add(-1); !d.After(monthEnd.Add(1)); d = d.Add(1) {
		periods[d] = calendar.Period(d, holidays)
	}
	return periods
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case rostererr.InvalidInput:
		return exitInvalidInput
	case rostererr.Infeasible:
		return exitInfeasible
	case rostererr.Unsatisfiable:
		return exitUnsatisfiable
	case rostererr.VerifierFailed:
		return exitVerifierFailed
	default:
		return 1
	}
}
