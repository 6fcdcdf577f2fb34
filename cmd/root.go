package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strideapp/stride/internal/logger"
	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/notify"
	"github.com/strideapp/stride/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Stride helps you plan, sequence and finish your tasks.",
	Long: `Stride is a command line task manager with dependency tracking,
recurring tasks and a points system. Tasks can depend on each other,
repeat on a schedule, and award points when completed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVersion(version)
		logger.SetCommand(cmd.CommandPath())
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.stride.yaml or ./.stride.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetTaskFilePath returns the full path to the tasks file.
func GetTaskFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Project.TasksDir, config.Data.File)
}

// GetPointsDBPath returns the full path to the points ledger database.
func GetPointsDBPath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Points.DBFile)
}

// GetStore initializes and returns the task store using the unified types.AppConfig.
func GetStore() (store.TaskStore, error) {
	s := store.NewFileTaskStore()
	config := GetConfig()

	taskFilePath := GetTaskFilePath()

	err := s.Initialize(map[string]string{
		"dataFile":       taskFilePath,
		"dataFileFormat": config.Data.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", taskFilePath, err)
	}
	return s, nil
}

// GetPointsStore opens the append-only points ledger.
func GetPointsStore() (store.PointsStore, error) {
	s, err := store.NewSQLitePointsStore(GetPointsDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open points ledger: %w", err)
	}
	return s, nil
}

// loadOrchestrator builds an orchestrator over every task in the store.
// The points ledger is optional; when present it feeds the stats provider
// so completions are scored against the user's real level and streak.
func loadOrchestrator(taskStore store.TaskStore, pointsStore store.PointsStore) (*orchestrator.Orchestrator, error) {
	tasks, err := taskStore.ListTasks(models.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	config := GetConfig()
	opts := []orchestrator.Option{
		orchestrator.WithRecurrenceCapEnforcement(config.Recur.EnforceMaxOccurrences),
	}
	if pointsStore != nil {
		opts = append(opts, orchestrator.WithStatsProvider(newLedgerStats(pointsStore)))
	}

	orch := orchestrator.New(opts...)
	if err := orch.Load(tasks); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return orch, nil
}

// newScheduler returns the notification scheduler for the CLI shell.
func newScheduler() notify.Scheduler {
	return &notify.LogScheduler{Verbose: viper.GetBool("verbose")}
}
