package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/paddock/internal/adapters/repository"
	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// startedService builds a deterministic started service seeded with two
// race-ready teams.
func startedService(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()
	opts = append([]service.Option{service.WithSeed(42)}, opts...)
	svc := service.New(opts...)
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, ctx
}

func seedField(t *testing.T, svc *service.Service, ctx context.Context) {
	t.Helper()
	for _, team := range []string{"Team A", "Team B"} {
		if err := svc.CreateTeam(ctx, model.Team{Name: team}); err != nil {
			t.Fatalf("create team: %v", err)
		}
	}
	drivers := []model.Driver{
		{Name: "Ari", Team: "Team A", Skill: 80, Luck: 10},
		{Name: "Bea", Team: "Team B", Skill: 60, Luck: 10},
	}
	for _, d := range drivers {
		if err := svc.CreateDriver(ctx, d); err != nil {
			t.Fatalf("create driver: %v", err)
		}
	}
	cars := []model.Car{
		{Team: "Team A", Model: "Quattro", Category: "Group B", Horsepower: 450, Drivetrain: model.DrivetrainAllWheel, MinWeightKG: 1100, Driver: "Ari"},
		{Team: "Team B", Model: "Stratos", Category: "Group B", Horsepower: 280, Drivetrain: "RWD", MinWeightKG: 980, Driver: "Bea"},
	}
	for _, c := range cars {
		if err := svc.CreateCar(ctx, c); err != nil {
			t.Fatalf("create car: %v", err)
		}
	}
}

// waitForStatus polls until the race leaves pending or the deadline passes.
func waitForStatus(svc *service.Service, ctx context.Context, raceID string) types.RaceOutcome {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out, err := svc.Outcome(ctx, raceID)
		if err == nil && out.Status != types.RaceStatusPending {
			return out
		}
		time.Sleep(10 * time.Millisecond)
	}
	out, _ := svc.Outcome(ctx, raceID)
	return out
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping a started service", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Roster(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startedService(t)

		Convey("When seeding a full field", func() {
			seedField(t, svc, ctx)

			Convey("Then the roster listings reflect it", func() {
				So(svc.Teams(ctx), ShouldHaveLength, 2)
				So(svc.Drivers(ctx), ShouldHaveLength, 2)
				So(svc.Cars(ctx), ShouldHaveLength, 2)
			})

			Convey("And duplicate registrations surface repository errors", func() {
				err := svc.CreateTeam(ctx, model.Team{Name: "Team A"})
				So(errors.Is(err, repository.ErrDuplicateTeam), ShouldBeTrue)
			})
		})
	})
}

func TestService_SubmitRace(t *testing.T) {
	Convey("Given a started service with a seeded field", t, func() {
		svc, ctx := startedService(t)
		seedField(t, svc, ctx)

		Convey("When submitting a race", func() {
			raceID, duplicate, err := svc.SubmitRace(ctx, "")

			Convey("Then it is accepted with a fresh ID", func() {
				So(err, ShouldBeNil)
				So(duplicate, ShouldBeFalse)
				So(raceID, ShouldNotBeEmpty)
			})

			Convey("And it eventually settles", func() {
				So(err, ShouldBeNil)
				out := waitForStatus(svc, ctx, raceID)
				So(out.Status, ShouldEqual, types.RaceStatusSettled)
				So(out.Results, ShouldHaveLength, 2)
				So(out.Winner, ShouldNotBeNil)
				So(out.Fee, ShouldEqual, 1000)
				So(out.PrizePool, ShouldEqual, 1600)
			})
		})

		Convey("When submitting the same race ID twice", func() {
			raceID, _, err := svc.SubmitRace(ctx, "race-fixed")
			So(err, ShouldBeNil)
			again, duplicate, err2 := svc.SubmitRace(ctx, "race-fixed")

			Convey("Then the second submission is flagged as a duplicate", func() {
				So(err2, ShouldBeNil)
				So(duplicate, ShouldBeTrue)
				So(again, ShouldEqual, raceID)
			})

			Convey("And the race only settles once", func() {
				out := waitForStatus(svc, ctx, raceID)
				So(out.Status, ShouldEqual, types.RaceStatusSettled)

				total := 0.0
				for _, row := range svc.Teams(ctx) {
					total += row.Budget
				}
				// Two teams paid 1000 each, winner got 1600 back.
				So(total, ShouldEqual, 2*50_000-2*1000+1600)
			})
		})
	})

	Convey("Given a started service with an empty roster", t, func() {
		svc, ctx := startedService(t)

		Convey("When submitting a race", func() {
			raceID, _, err := svc.SubmitRace(ctx, "")
			So(err, ShouldBeNil)

			Convey("Then it aborts with no money moved", func() {
				out := waitForStatus(svc, ctx, raceID)
				So(out.Status, ShouldEqual, types.RaceStatusAborted)
				So(out.Results, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When submitting a race", func() {
			_, _, err := svc.SubmitRace(context.Background(), "")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_InvalidEntrantAbortsRace(t *testing.T) {
	Convey("Given a field containing a car with no horsepower", t, func() {
		svc, ctx := startedService(t)
		seedField(t, svc, ctx)
		So(svc.CreateDriver(ctx, model.Driver{Name: "Cal", Team: "Team A", Skill: 50, Luck: 10}), ShouldBeNil)
		So(svc.CreateCar(ctx, model.Car{
			Team: "Team A", Model: "Brick", Category: "Group B",
			Horsepower: 0, Drivetrain: "RWD", MinWeightKG: 900, Driver: "Cal",
		}), ShouldBeNil)

		Convey("When a race runs over that field", func() {
			raceID, _, err := svc.SubmitRace(ctx, "")
			So(err, ShouldBeNil)
			out := waitForStatus(svc, ctx, raceID)

			Convey("Then the whole race aborts before any fee is taken", func() {
				So(out.Status, ShouldEqual, types.RaceStatusAborted)
				for _, row := range svc.Teams(ctx) {
					So(row.Budget, ShouldEqual, 50_000)
				}
			})
		})
	})
}

func TestService_Standings(t *testing.T) {
	Convey("Given a settled race", t, func() {
		svc, ctx := startedService(t)
		seedField(t, svc, ctx)
		raceID, _, err := svc.SubmitRace(ctx, "")
		So(err, ShouldBeNil)
		out := waitForStatus(svc, ctx, raceID)
		So(out.Status, ShouldEqual, types.RaceStatusSettled)

		Convey("When reading the standings", func() {
			rows, err := svc.Standings(ctx, 10)

			Convey("Then the winner leads the table", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Team, ShouldEqual, out.Winner.Team)
				So(rows[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When asking for more rows than the configured cap", func() {
			svcCapped, ctx2 := startedService(t, service.WithMaxStandingsLimit(1))
			seedField(t, svcCapped, ctx2)
			rows, err := svcCapped.Standings(ctx2, 50)

			Convey("Then the page is clamped", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
			})
		})
	})
}

func TestService_OutcomeLookup(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startedService(t)

		Convey("When looking up an unknown race", func() {
			_, err := svc.Outcome(ctx, "no-such-race")

			Convey("Then it is not found", func() {
				So(errors.Is(err, service.ErrRaceNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_QueueBackpressure(t *testing.T) {
	Convey("Given a service with pacing slow enough to back up a tiny queue", t, func() {
		svc, ctx := startedService(t,
			service.WithQueueSize(1),
			service.WithPacingDelay(200*time.Millisecond),
		)
		seedField(t, svc, ctx)

		Convey("When flooding it with submissions", func() {
			var rejected error
			for i := 0; i < 50 && rejected == nil; i++ {
				_, _, err := svc.SubmitRace(ctx, "")
				if err != nil {
					rejected = err
				}
			}

			Convey("Then backpressure eventually rejects a submission", func() {
				So(errors.Is(rejected, service.ErrQueueFull), ShouldBeTrue)
			})
		})
	})
}
