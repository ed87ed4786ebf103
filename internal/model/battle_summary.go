package model

// BattleSummary is the persisted result of one simulated battle.
type BattleSummary struct {
	ID     string
	Seed   uint64
	Rounds int
	// WinnerID is empty on a draw.
	WinnerID  string
	Reactions int
	Broken    bool
}
