package pricing

import "fmt"

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
	LevelOut    Level = "out"
)

type StockLevel struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// GetStockLevel classifies a stock count: above 20 high, 6..20 medium, 1..5
// low, anything else out.
func GetStockLevel(stock int) StockLevel {
	switch {
	case stock > 20:
		return StockLevel{Level: LevelHigh, Label: "En stock", Color: "#4CAF50"}
	case stock > 5:
		return StockLevel{Level: LevelMedium, Label: "Stock limité", Color: "#FF9800"}
	case stock > 0:
		return StockLevel{Level: LevelLow, Label: fmt.Sprintf("Plus que %d", stock), Color: "#F44336"}
	default:
		return StockLevel{Level: LevelOut, Label: "Épuisé", Color: "#9E9E9E"}
	}
}
