package rallysim

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/paddock/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	carClassDivisor    = 4
)

// Constants for car generation ranges.
const (
	touringHPMin     = 120.0
	touringHPRange   = 80.0
	touringWeightMin = 950.0
	touringWeightVar = 150.0

	rallyHPMin     = 220.0
	rallyHPRange   = 130.0
	rallyWeightMin = 1100.0
	rallyWeightVar = 200.0

	prototypeHPMin     = 400.0
	prototypeHPRange   = 250.0
	prototypeWeightMin = 850.0
	prototypeWeightVar = 150.0

	vintageHPMin     = 80.0
	vintageHPRange   = 60.0
	vintageWeightMin = 800.0
	vintageWeightVar = 250.0
)

// Constants for driver generation ranges.
const (
	skillMin   = 10
	skillRange = 90
	luckMin    = 0
	luckRange  = 100
)

// Constants for car class cases.
const (
	caseTouringCar   = 0
	caseRallyCar     = 1
	casePrototypeCar = 2
	caseVintageCar   = 3
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, bound) using crypto/rand.
func getRandomInt(bound int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(bound))
	return n.Int64()
}

// generateFleet creates the specified number of teams, each with one
// driver and one car carrying unique names.
func generateFleet(ctx context.Context, config *Config, stats *Stats) ([]TeamEntry, error) {
	logger.Get().Info(ctx, "generating fleet with unique team names", logger.Int("numTeams", config.NumTeams))

	fleet := make([]TeamEntry, config.NumTeams)
	for i := 0; i < config.NumTeams; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		fleet[i] = generateSingleEntry(i)
	}

	stats.TeamsGenerated = len(fleet)
	logger.Get().Info(ctx, "generated fleet successfully", logger.Int("count", len(fleet)))

	return fleet, nil
}

// generateSingleEntry creates one team with its driver and car. Names
// carry a uuid suffix so repeated runs against the same service never
// collide with previously seeded rosters.
func generateSingleEntry(index int) TeamEntry {
	suffix := uuid.New().String()[:8]
	teamName := "team_" + strconv.Itoa(index) + "_" + suffix
	driverName := "driver_" + strconv.Itoa(index) + "_" + suffix

	car := generateVariedCar(teamName, driverName, suffix)

	return TeamEntry{
		Team: TeamPayload{
			Name: teamName,
		},
		Driver: DriverPayload{
			Name:  driverName,
			Team:  teamName,
			Skill: skillMin + int(getRandomInt(skillRange+1)),
			Luck:  luckMin + int(getRandomInt(luckRange+1)),
		},
		Car: car,
	}
}

// generateVariedCar creates a car drawn from one of several class
// profiles so the field mixes slow and fast machinery.
func generateVariedCar(teamName, driverName, suffix string) CarPayload {
	car := CarPayload{
		Team:   teamName,
		Model:  "car_" + suffix,
		Driver: driverName,
	}

	// Roughly half the field runs all wheel drive.
	if getRandomInt(2) == 0 {
		car.Drivetrain = "4WD"
	} else {
		car.Drivetrain = "RWD"
	}

	switch getRandomInt(carClassDivisor) {
	case caseTouringCar:
		car.Category = "touring"
		car.Horsepower = touringHPMin + getRandomFloat()*touringHPRange
		car.MinWeightKG = touringWeightMin + getRandomFloat()*touringWeightVar
	case caseRallyCar:
		car.Category = "rally"
		car.Horsepower = rallyHPMin + getRandomFloat()*rallyHPRange
		car.MinWeightKG = rallyWeightMin + getRandomFloat()*rallyWeightVar
	case casePrototypeCar:
		car.Category = "prototype"
		car.Horsepower = prototypeHPMin + getRandomFloat()*prototypeHPRange
		car.MinWeightKG = prototypeWeightMin + getRandomFloat()*prototypeWeightVar
	default:
		car.Category = "vintage"
		car.Horsepower = vintageHPMin + getRandomFloat()*vintageHPRange
		car.MinWeightKG = vintageWeightMin + getRandomFloat()*vintageWeightVar
	}

	return car
}
