package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pointsHistoryLimit int

// pointsCmd represents the points command
var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show your points, level and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		pointsStore, err := GetPointsStore()
		if err != nil {
			return err
		}
		defer func() { _ = pointsStore.Close() }()

		userID := GetConfig().Points.DefaultUser
		points, xp, err := pointsStore.Total(userID)
		if err != nil {
			return fmt.Errorf("failed to read points total: %w", err)
		}

		stats := newLedgerStats(pointsStore).Stats(userID)
		fmt.Printf("Points:      %d\n", points)
		fmt.Printf("XP:          %d (level %d, %d to next)\n", xp, stats.Level, xpPerLevel-xp%xpPerLevel)
		fmt.Printf("Streak:      %d day(s)\n", stats.StreakDays)
		fmt.Printf("Consistency: %.0f%% over the last %d days\n", stats.Consistency*100, consistencyWindowDays)
		return nil
	},
}

// pointsHistoryCmd represents the points history subcommand
var pointsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent point awards",
	RunE: func(cmd *cobra.Command, args []string) error {
		pointsStore, err := GetPointsStore()
		if err != nil {
			return err
		}
		defer func() { _ = pointsStore.Close() }()

		userID := GetConfig().Points.DefaultUser
		entries, err := pointsStore.History(userID, pointsHistoryLimit)
		if err != nil {
			return fmt.Errorf("failed to read points history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No points earned yet. Complete a task!")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  +%4d (+%d XP)  %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Amount, e.XP, e.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pointsCmd)
	pointsCmd.AddCommand(pointsHistoryCmd)

	pointsHistoryCmd.Flags().IntVarP(&pointsHistoryLimit, "limit", "n", 20, "number of entries to show")
}
