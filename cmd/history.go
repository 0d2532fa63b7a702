package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent unlock attempts",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := store.InitDB()
		if err != nil {
			return err
		}
		r := store.NewRepository(db)
		defer func() { _ = r.Close() }()

		events, err := r.ListUnlocks(historyLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No unlock attempts recorded.")
			return nil
		}
		for _, e := range events {
			result := "ok"
			if !e.OK {
				result = "FAILED"
			}
			fmt.Printf("%s  %-10s %-7s %s\n", e.At.Format("2006-01-02 15:04:05"), e.Method, result, e.Identity)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
