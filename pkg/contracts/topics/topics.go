package topics

const (
	// Rodadas
	RoundResolved = "round_resolved"
)
