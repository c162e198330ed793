package game

// spawnOutcome is one rung of the spawn ladder: a draw that falls at or above
// threshold (after rescaling by the rungs before it) yields value.
type spawnOutcome struct {
	threshold float64
	value     Value
}

// spawnTable is the spawn ladder, outermost rung first. Each rung is a
// conditional probability of continuing down the ladder; the long tail of
// rare and symbolic values is authored content and must stay as written.
var spawnTable = []spawnOutcome{
	{0.9999999888888888888888888, Num(91)},
	{0.9999999615384615384615384, Num(83)},
	{0.99999996, Num(82)},
	{0.99999995, Num(77)},
	{0.9999999375, Token("▦")},
	{0.9999999, Token("🐾")},
	{0.999999875, Num(64)},
	{0.9999998333333333333333333, Num(42)},
	{0.9999998, Token("🐧")},
	{0.99999975, Num(41)},
	{0.9999995, Token("ZZ")},
	{0.999999, Token("🚫")},
	{0.99999875, Num(-2)},
	{0.99999862825788751714677, Num(729)},
	{0.999998, Num(26)},
	{0.99999794238683127572016, Num(486)},
	{0.9999975, Token("27÷")},
	{0.99999588477366255144032, Num(243)},
	{0.999995, Token("27×")},
	{0.99999382716049382716049, Num(162)},
	{0.9999876543209876543209, Num(81)},
	{0.9999814814814814814814, Num(54)},
	{0.999975, Token("27-")},
	{0.99995, Token("27+")},
	{0.9999, Num(-1)},
	{0.9998, Num(27)},
	{0.9995, Token("Z7")},
	{0.999, Num(10)},
	{0.998666666666666666666, Num(9)},
	{0.998, Num(8)},
	{0.996, Num(7)},
	{0.995, Token("0")},
	{0.99, Num(6)},
	{0.98666666666666666666, Num(5)},
	{0.98, Num(4)},
	{0.96, Num(3)},
	{0.8, Num(2)},
}

// spawnBase is the value produced when a draw passes every rung
var spawnBase = Num(1)

// SpawnValue resolves a single uniform draw in [0, 1) to a spawn value.
// Passing a rung rescales the draw into [0, 1) again, which makes one draw
// equivalent to an independent draw per rung.
func SpawnValue(draw float64) Value {
	for _, rung := range spawnTable {
		if draw >= rung.threshold {
			return rung.value
		}
		draw /= rung.threshold
	}
	return spawnBase
}

// SpawnOutcomes lists every value the spawn table can produce, most common first
func SpawnOutcomes() []Value {
	values := []Value{spawnBase}
	for i := len(spawnTable) - 1; i >= 0; i-- {
		values = append(values, spawnTable[i].value)
	}
	return values
}
