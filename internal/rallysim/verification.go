package rallysim

import (
	"fmt"
	"log"
	"math"
)

// Tolerance for floating point comparisons on money amounts.
const moneyEpsilon = 1e-6

// verifyResults checks the settled outcomes and the standings for
// internal consistency.
func verifyResults(config *Config, outcomes []RaceOutcome, standings []StandingsRow) error {
	log.Println("🔍 Verifying results...")

	settled := 0
	for _, outcome := range outcomes {
		if outcome.Status != "settled" {
			continue
		}
		settled++
		if err := verifyOutcome(outcome); err != nil {
			return fmt.Errorf("race %s: %w", outcome.RaceID, err)
		}
	}

	if settled == 0 {
		return fmt.Errorf("no settled races to verify")
	}

	if len(standings) > 0 {
		if err := verifyStandingsOrder(standings); err != nil {
			log.Printf("⚠️  Standings consistency warning: %v", err)
		} else {
			log.Println("✅ Standings consistency verified")
		}
	}

	displayStandings(outcomes, standings, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyOutcome checks one settled race for consistent accounting.
func verifyOutcome(outcome RaceOutcome) error {
	if len(outcome.Results) == 0 {
		return fmt.Errorf("settled race has no results")
	}

	// Results must be ordered by finishing time with positions from 1.
	for i, row := range outcome.Results {
		if row.Position != i+1 {
			return fmt.Errorf("result %d has position %d", i, row.Position)
		}
		if i > 0 && row.TimeTaken < outcome.Results[i-1].TimeTaken {
			return fmt.Errorf("result %d finished faster than result %d", i, i-1)
		}
	}

	if outcome.Winner == nil {
		return fmt.Errorf("settled race has no winner")
	}
	first := outcome.Results[0]
	if outcome.Winner.Team != first.Team || outcome.Winner.Driver != first.Driver {
		return fmt.Errorf("winner %s/%s does not match first result %s/%s",
			outcome.Winner.Team, outcome.Winner.Driver, first.Team, first.Driver)
	}

	// The prize pool is funded entirely by the entry fees, so it can
	// never exceed the distinct team count times the fee.
	teams := distinctTeams(outcome.Results)
	collected := float64(teams) * outcome.Fee
	if outcome.PrizePool-collected > moneyEpsilon {
		return fmt.Errorf("prize pool %.2f exceeds collected fees %.2f", outcome.PrizePool, collected)
	}
	if outcome.PrizePool <= 0 {
		return fmt.Errorf("settled race has no prize pool")
	}

	return nil
}

// distinctTeams counts the distinct team names in a result list.
func distinctTeams(results []ResultRow) int {
	seen := make(map[string]struct{}, len(results))
	for _, row := range results {
		seen[row.Team] = struct{}{}
	}
	return len(seen)
}

// verifyStandingsOrder checks that standings are sorted by budget
// descending and that ranks only repeat on equal budgets.
func verifyStandingsOrder(standings []StandingsRow) error {
	if standings[0].Rank != 1 {
		return fmt.Errorf("standings do not start at rank 1")
	}

	for i := 1; i < len(standings); i++ {
		prev, cur := standings[i-1], standings[i]
		if cur.Budget > prev.Budget {
			return fmt.Errorf("standings not sorted: row %d has a larger budget than row %d", i, i-1)
		}
		if cur.Rank == prev.Rank && math.Abs(cur.Budget-prev.Budget) > moneyEpsilon {
			return fmt.Errorf("rows %d and %d share rank %d with different budgets", i-1, i, cur.Rank)
		}
		if cur.Rank < prev.Rank {
			return fmt.Errorf("standings ranks decrease at row %d", i)
		}
	}

	return nil
}

// displayStandings shows the richest teams and the prize flow summary.
func displayStandings(outcomes []RaceOutcome, standings []StandingsRow, verbose bool) {
	topN := 10
	if len(standings) < topN {
		topN = len(standings)
	}

	log.Printf("🏆 Top %d teams by budget:", topN)
	for i := 0; i < topN; i++ {
		row := standings[i]
		log.Printf("   %d. %s - Budget: %.2f", row.Rank, row.Team, row.Budget)
	}

	if verbose {
		var fees, prizes float64
		for _, outcome := range outcomes {
			if outcome.Status != "settled" {
				continue
			}
			fees += float64(distinctTeams(outcome.Results)) * outcome.Fee
			prizes += outcome.PrizePool
		}

		log.Printf(`📊 Settlement flow:
   Fees collected: %.2f
   Prizes awarded: %.2f
   Retained: %.2f
`, fees, prizes, fees-prizes)
	}
}
