package race_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	model "github.com/okian/paddock/internal/domain/model"
	performance "github.com/okian/paddock/internal/domain/performance"
	race "github.com/okian/paddock/internal/domain/race"
	"github.com/okian/paddock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// midSource pins rand.Float64 at exactly 0.5 so the luck factor is 1.0.
type midSource struct{}

func (midSource) Int63() int64 { return 1 << 62 }
func (midSource) Seed(int64)   {}

// stubEvaluator returns manufactured times keyed by car model.
type stubEvaluator struct {
	times map[string]float64
}

func (s stubEvaluator) FinishTime(_ context.Context, e model.Entrant) (float64, error) {
	return s.times[e.CarModel], nil
}

func entrant(team, carModel string, hp float64, drivetrain string) model.Entrant {
	return model.Entrant{
		Team:        team,
		Driver:      "driver of " + team,
		CarModel:    carModel,
		Category:    "Group B",
		Horsepower:  hp,
		Drivetrain:  drivetrain,
		MinWeightKG: 1000,
		Skill:       50,
		Luck:        1,
	}
}

func neutralEngine(opts ...race.Option) *race.Engine {
	eval := performance.New(performance.WithRand(rand.New(midSource{})))
	return race.New(eval, opts...)
}

func TestEngine_TwoEntrantRace(t *testing.T) {
	Convey("Given two entrants from two teams with neutral luck", t, func() {
		engine := neutralEngine()
		entrants := []model.Entrant{
			entrant("Team A", "Quattro", 200, model.DrivetrainAllWheel),
			entrant("Team B", "Stratos", 150, "RWD"),
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then it settles with the faster car first", func() {
				So(err, ShouldBeNil)
				So(out.State, ShouldEqual, race.StateSettled)
				So(out.Results, ShouldHaveLength, 2)
				So(out.Results[0].Team, ShouldEqual, "Team A")
				So(out.Results[0].Position, ShouldEqual, 1)
				So(out.Results[0].TimeTaken, ShouldAlmostEqual, 476.190476, 0.0001)
				So(out.Results[1].Team, ShouldEqual, "Team B")
				So(out.Results[1].Position, ShouldEqual, 2)
				So(out.Results[1].TimeTaken, ShouldAlmostEqual, 666.666667, 0.0001)
			})

			Convey("And the economics match the rally rules", func() {
				So(err, ShouldBeNil)
				So(out.Fee, ShouldEqual, 1000)
				So(out.PrizePool, ShouldEqual, 1600)
			})

			Convey("And the deltas debit both teams and credit the winner", func() {
				So(err, ShouldBeNil)
				So(out.Deltas, ShouldHaveLength, 3)
				So(out.Deltas[0], ShouldResemble, model.LedgerDelta{Team: "Team A", Amount: -1000})
				So(out.Deltas[1], ShouldResemble, model.LedgerDelta{Team: "Team B", Amount: -1000})
				So(out.Deltas[2], ShouldResemble, model.LedgerDelta{Team: "Team A", Amount: 1600})
			})

			Convey("And the winner record points at the top-ranked entrant", func() {
				So(err, ShouldBeNil)
				So(out.Winner, ShouldNotBeNil)
				So(out.Winner.Team, ShouldEqual, "Team A")
			})
		})
	})
}

func TestEngine_InsufficientEntrants(t *testing.T) {
	Convey("Given a single entrant", t, func() {
		engine := neutralEngine()
		entrants := []model.Entrant{
			entrant("Lonely Racing", "Solo", 200, "RWD"),
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then it aborts with no ledger movement", func() {
				So(errors.Is(err, race.ErrInsufficientEntrants), ShouldBeTrue)
				So(out.State, ShouldEqual, race.StateAborted)
				So(out.AbortReason, ShouldNotBeEmpty)
				So(out.Deltas, ShouldBeEmpty)
				So(out.Results, ShouldBeEmpty)
				So(out.Winner, ShouldBeNil)
			})
		})
	})

	Convey("Given no entrants at all", t, func() {
		engine := neutralEngine()

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), nil)

			Convey("Then it aborts the same way", func() {
				So(errors.Is(err, race.ErrInsufficientEntrants), ShouldBeTrue)
				So(out.Deltas, ShouldBeEmpty)
			})
		})
	})
}

func TestEngine_InvalidEntrant(t *testing.T) {
	Convey("Given a field containing a car with zero horsepower", t, func() {
		engine := neutralEngine()
		bad := entrant("Team B", "Brick", 0, "RWD")
		entrants := []model.Entrant{
			entrant("Team A", "Quattro", 200, model.DrivetrainAllWheel),
			bad,
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then validation aborts before any money moves", func() {
				So(errors.Is(err, performance.ErrInvalidEntrant), ShouldBeTrue)
				So(out.State, ShouldEqual, race.StateAborted)
				So(out.Deltas, ShouldBeEmpty)
			})
		})
	})
}

func TestEngine_DistinctTeamFees(t *testing.T) {
	Convey("Given three teams where one fields two cars", t, func() {
		engine := neutralEngine()
		entrants := []model.Entrant{
			entrant("Team A", "Quattro", 200, model.DrivetrainAllWheel),
			entrant("Team B", "Stratos", 180, "RWD"),
			entrant("Team B", "037", 170, "RWD"),
			entrant("Team C", "Celica", 160, model.DrivetrainAllWheel),
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then each distinct team pays exactly one fee", func() {
				So(err, ShouldBeNil)
				fees := make(map[string]int)
				for _, d := range out.Deltas {
					if d.Amount < 0 {
						fees[d.Team]++
						So(d.Amount, ShouldEqual, -1000)
					}
				}
				So(fees, ShouldHaveLength, 3)
				So(fees["Team A"], ShouldEqual, 1)
				So(fees["Team B"], ShouldEqual, 1)
				So(fees["Team C"], ShouldEqual, 1)
			})

			Convey("And the prize pool counts teams, not cars", func() {
				So(err, ShouldBeNil)
				So(out.PrizePool, ShouldEqual, 3*1000*0.8)
			})

			Convey("And exactly one team receives the prize", func() {
				So(err, ShouldBeNil)
				credits := 0
				for _, d := range out.Deltas {
					if d.Amount > 0 {
						credits++
						So(d.Team, ShouldEqual, out.Winner.Team)
						So(d.Amount, ShouldEqual, out.PrizePool)
					}
				}
				So(credits, ShouldEqual, 1)
			})
		})
	})
}

func TestEngine_TieBreakStability(t *testing.T) {
	Convey("Given two entrants engineered to finish with equal times", t, func() {
		eval := stubEvaluator{times: map[string]float64{
			"First":  500.0,
			"Second": 500.0,
			"Third":  400.0,
		}}
		engine := race.New(eval)
		entrants := []model.Entrant{
			entrant("Team A", "First", 200, "RWD"),
			entrant("Team B", "Second", 200, "RWD"),
			entrant("Team C", "Third", 200, "RWD"),
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then tied entrants keep their input order behind the leader", func() {
				So(err, ShouldBeNil)
				So(out.Results[0].CarModel, ShouldEqual, "Third")
				So(out.Results[1].CarModel, ShouldEqual, "First")
				So(out.Results[2].CarModel, ShouldEqual, "Second")
			})
		})
	})
}

func TestEngine_Determinism(t *testing.T) {
	Convey("Given two engines with identically seeded evaluators", t, func() {
		entrants := []model.Entrant{
			entrant("Team A", "Quattro", 200, model.DrivetrainAllWheel),
			entrant("Team B", "Stratos", 195, "RWD"),
			entrant("Team C", "Celica", 190, model.DrivetrainAllWheel),
		}
		// Lucky drivers so the draw actually matters.
		for i := range entrants {
			entrants[i].Luck = 90
		}

		first := race.New(performance.New(performance.WithSeed(1234)))
		second := race.New(performance.New(performance.WithSeed(1234)))

		Convey("When both run the same snapshot", func() {
			a, errA := first.Run(context.Background(), entrants)
			b, errB := second.Run(context.Background(), entrants)

			Convey("Then rankings and times are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Results, ShouldResemble, b.Results)
				So(a.Deltas, ShouldResemble, b.Deltas)
			})
		})
	})
}

func TestEngine_ConfigurableEconomy(t *testing.T) {
	Convey("Given an engine with a custom fee and prize share", t, func() {
		engine := neutralEngine(race.WithEntryFee(500), race.WithPrizeShare(0.5))
		entrants := []model.Entrant{
			entrant("Team A", "Quattro", 200, model.DrivetrainAllWheel),
			entrant("Team B", "Stratos", 150, "RWD"),
		}

		Convey("When the race runs", func() {
			out, err := engine.Run(context.Background(), entrants)

			Convey("Then the economics follow the configuration", func() {
				So(err, ShouldBeNil)
				So(out.Fee, ShouldEqual, 500)
				So(out.PrizePool, ShouldEqual, 2*500*0.5)
			})
		})
	})
}
