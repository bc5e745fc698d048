package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// Validates a catalog document without starting a match. Run it after
// editing the game data to catch dangling references and bad constants
// before players do.
func main() {
	path := "config/catalog.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}

	fmt.Println("=== Deadline Catalog Check ===")
	fmt.Printf("Catalog file: %s\n", absPath)

	cat, err := catalog.Load(absPath)
	if err != nil {
		log.Fatalf("Catalog rejected: %v", err)
	}

	taskCards := 0
	actionCards := 0
	special := 0
	for _, card := range cat.Cards {
		switch card.Kind {
		case catalog.CardTask:
			taskCards++
		case catalog.CardAction:
			actionCards++
		}
		if card.Special {
			special++
		}
	}

	fmt.Printf("Tasks:        %d\n", len(cat.Tasks))
	fmt.Printf("Effects:      %d\n", len(cat.Effects))
	fmt.Printf("Task cards:   %d\n", taskCards)
	fmt.Printf("Action cards: %d\n", actionCards)
	fmt.Printf("Special:      %d (excluded from the deck)\n", special)
	fmt.Printf("Dealable:     %d\n", len(cat.DealableCards()))
	fmt.Printf("Deck size:    %d, hand size: %d\n", cat.DeckSize, cat.HandSize)
	fmt.Printf("Term:         %d days, %d hours per day\n", cat.DaysInTerm, cat.HoursPerDay)
	fmt.Printf("Thresholds:   win at %d, defeat at %d\n", cat.WinThreshold, cat.DefeatThreshold)
	fmt.Println("Catalog OK")
}
