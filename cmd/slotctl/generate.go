package main

import (
	"fmt"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/slot"
	"slotbook-service/internal/pkg/constvars"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type generateOutput struct {
	Key         models.PoolKey `json:"key"`
	Slots       []models.Slot  `json:"slots"`
	Suggestions []models.Slot  `json:"suggestions,omitempty"`
}

func newGenerateCmd() *cobra.Command {
	var (
		schedule     slot.ScheduleConfig
		excludeStart string
		excludeEnd   string
		category     string
		serviceID    string
		date         string
		suggest      int
		prefer       []string
	)

	c := &cobra.Command{
		Use:   "generate",
		Short: "Print the slots a schedule produces as JSON",
		Example: "  slotctl generate --open 09:00 --close 11:00 --slot 30\n" +
			"  slotctl generate --category restaurant --open 18:00 --close 22:00 --slot 45 --buffer 15 --suggest 2",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (excludeStart == "") != (excludeEnd == "") {
				return fmt.Errorf("--exclude-start and --exclude-end must be given together")
			}
			if excludeStart != "" {
				schedule.ExclusionWindow = &slot.ExclusionWindow{Start: excludeStart, End: excludeEnd}
			}
			cfg, err := schedule.Configuration()
			if err != nil {
				return err
			}

			if date == "" {
				date = time.Now().Format(constvars.DateLayout)
			}
			key := models.PoolKey{Category: category, ServiceID: serviceID, Date: date}

			slots, err := slot.NewGenerator(zap.NewNop()).Generate(cmd.Context(), cfg, key)
			if err != nil {
				return err
			}

			out := generateOutput{Key: key, Slots: slots}
			if suggest > 0 {
				var ranker slot.Ranker = slot.FirstAvailable
				if len(prefer) > 0 {
					ranker = slot.PreferredTimes(prefer)
				}
				out.Suggestions = ranker(slots, suggest)
			}

			raw, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&schedule.OpenTime, "open", "", "opening time, HH:MM")
	f.StringVar(&schedule.CloseTime, "close", "", "closing time, HH:MM")
	f.IntVar(&schedule.SlotMinutes, "slot", 30, "slot duration in minutes")
	f.IntVar(&schedule.BufferMinutes, "buffer", 0, "gap after each slot in minutes")
	f.StringVar(&excludeStart, "exclude-start", "", "start of an excluded window, HH:MM")
	f.StringVar(&excludeEnd, "exclude-end", "", "end of an excluded window, HH:MM")
	f.StringVar(&category, "category", slot.CategoryMedical, "service category tag")
	f.StringVar(&serviceID, "service", "default", "service id")
	f.StringVar(&date, "date", "", "pool date YYYY-MM-DD, defaults to today")
	f.IntVar(&suggest, "suggest", 0, "also rank this many suggestions")
	f.StringSliceVar(&prefer, "prefer", nil, "preferred HH:MM times for suggestions")
	_ = c.MarkFlagRequired("open")
	_ = c.MarkFlagRequired("close")

	return c
}
