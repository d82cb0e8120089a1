package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	emailtemplatestore "github.com/dalemusser/eventdesk/internal/app/store/emailtemplates"
	eventstore "github.com/dalemusser/eventdesk/internal/app/store/events"
	registrationstore "github.com/dalemusser/eventdesk/internal/app/store/registrations"
	"github.com/dalemusser/eventdesk/internal/app/system/indexes"
	"github.com/dalemusser/eventdesk/internal/app/system/mailer"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedGroups int
	seedSeed   uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample events and pending group registrations",
	Long: `Insert the sample event catalogue, the default approval email template
and a number of pending group registrations with random members.

Existing events are left alone. Use --seed for a repeatable data set.

Examples:
  eventdeskctl seed
  eventdeskctl seed --groups 200 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedGroups < 0 {
			return errors.New("--groups must not be negative")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(context.Background())

		logger := newLogger()
		defer logger.Sync()

		if err := indexes.EnsureAll(ctx, db); err != nil {
			return err
		}

		events := eventstore.New(db)
		for _, e := range sampleEvents {
			if _, err := events.Create(ctx, e); err != nil {
				if errors.Is(err, eventstore.ErrDuplicateEventName) {
					continue
				}
				return fmt.Errorf("seed event %q: %w", e.Name, err)
			}
		}

		tmpls := emailtemplatestore.New(db, 0)
		existing, err := tmpls.Get(ctx, mailer.ApprovalTemplateType)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := tmpls.Upsert(ctx, mailer.DefaultApprovalTemplate()); err != nil {
				return err
			}
		}

		seed := seedSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed>>1))
		store := registrationstore.New(db, logger)
		for _, g := range sampleGroups(rng, seedGroups, time.Now().UTC()) {
			if err := store.InsertGroup(ctx, g.group, g.members); err != nil {
				return fmt.Errorf("seed group %s: %w", g.group.GroupID, err)
			}
		}

		logger.Info("seed complete",
			zap.Int("events", len(sampleEvents)),
			zap.Int("groups", seedGroups),
			zap.Uint64("seed", seed))
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedGroups, "groups", 25, "number of group registrations to insert")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0, "random seed (0 picks one)")
	rootCmd.AddCommand(seedCmd)
}

var sampleEvents = []models.Event{
	{Name: "Hackathon", Category: "Technical", Description: "24 hour build sprint.", Fee: 500, MaxTeamSize: 4},
	{Name: "Quiz", Category: "Technical", Description: "General tech quiz.", Fee: 200, MaxTeamSize: 2},
	{Name: "Robo Race", Category: "Technical", Description: "Line following robots.", Fee: 400, MaxTeamSize: 3},
	{Name: "Battle of Bands", Category: "Cultural", Description: "Live music contest.", Fee: 1000, MaxTeamSize: 6},
	{Name: "Street Play", Category: "Cultural", Description: "Open air theatre.", Fee: 600, MaxTeamSize: 8},
}

var (
	firstNames = []string{"Asha", "Ravi", "Meera", "Arjun", "Kiran", "Divya", "Rahul", "Sneha", "Vikram", "Anjali"}
	colleges   = []string{"RV College", "PES University", "BMS College", "Christ University", "MIT Manipal"}
	cities     = []string{"Bengaluru", "Mysuru", "Manipal", "Mangaluru"}
	tiers      = []string{"gold", "silver", "bronze"}
)

type seededGroup struct {
	group   models.GroupRegistration
	members []models.GroupMember
}

// sampleGroups builds n pending groups created over the day before now.
// Members pick either a tier or a day pass and one of the three identifier
// kinds, so every identity path is exercised.
func sampleGroups(rng *rand.Rand, n int, now time.Time) []seededGroup {
	out := make([]seededGroup, 0, n)
	for i := 0; i < n; i++ {
		event := sampleEvents[rng.IntN(len(sampleEvents))]
		size := 1 + rng.IntN(max(event.MaxTeamSize, 1))
		groupID := uuid.NewString()

		members := make([]models.GroupMember, 0, size)
		var total float64
		for j := 0; j < size; j++ {
			name := firstNames[rng.IntN(len(firstNames))]
			m := models.GroupMember{
				Name:            name,
				Email:           fmt.Sprintf("%s.%d.%d@example.com", name, i, j),
				Phone:           fmt.Sprintf("98%08d", rng.IntN(100000000)),
				College:         colleges[rng.IntN(len(colleges))],
				CollegeLocation: cities[rng.IntN(len(cities))],
				Amount:          event.Fee,
				MemberOrder:     j + 1,
			}
			if rng.IntN(2) == 0 {
				m.Tier = tiers[rng.IntN(len(tiers))]
			} else {
				m.PassType = "day"
			}
			switch rng.IntN(3) {
			case 0:
				m.UserID = "U-" + uuid.NewString()[:8]
			case 1:
				m.DelegateUserID = "D-" + uuid.NewString()[:8]
			default:
				m.PassID = "P-" + uuid.NewString()[:8]
			}
			total += m.Amount
			members = append(members, m)
		}

		txID := fmt.Sprintf("TXN%010d", rng.IntN(1e9))
		g := models.GroupRegistration{
			GroupID:              groupID,
			EventName:            event.Name,
			Status:               models.StatusPending,
			TotalAmount:          total,
			PaymentTransactionID: &txID,
			CreatedAt:            now.Add(-time.Duration(rng.IntN(24*60)) * time.Minute),
		}
		if rng.IntN(4) != 0 {
			path := "payment-proofs/" + groupID + ".png"
			g.PaymentScreenshotPath = &path
		}
		out = append(out, seededGroup{group: g, members: members})
	}
	return out
}
