package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/scheduler"
	"github.com/zhouql/stockpick/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler",
	Long: `Starts the scheduler daemon with the standing jobs:

- daily_select:  15:30 CST on weekdays, selection plus webhook push
- cache_cleanup: Sunday 06:00, reclaims long-stale cache rows

Example:
  go run ./cmd/stockpick scheduler start
  go run ./cmd/stockpick scheduler run daily_select`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runScheduler,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Trigger one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(app *app) (*scheduler.Scheduler, error) {
	sel, _, _, err := app.selector(false)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(app.log)
	if err := sched.AddJob(jobs.NewDailySelectJob(sel, app.notifier(), app.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewCleanupJob(app.store, app.log)); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	sched, err := buildScheduler(app)
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler running, Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	sched, err := buildScheduler(app)
	if err != nil {
		return err
	}

	if err := sched.RunJob(args[0]); err != nil {
		return err
	}

	// RunJob is asynchronous; block until the job records a result.
	fmt.Printf("Job %s triggered, waiting for completion\n", args[0])
	for {
		history, err := sched.History(args[0])
		if err != nil {
			return err
		}
		if len(history.Results) > 0 {
			result := history.Results[len(history.Results)-1]
			if !result.Success {
				return fmt.Errorf("job %s failed: %s", args[0], result.Error)
			}
			fmt.Printf("Job %s completed in %.2fs\n", args[0], result.Duration.Seconds())
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}
