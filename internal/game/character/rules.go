package character

// ProficiencyBonus returns ⌈level/4⌉ + 1.
//
// Precondition: level >= 1.
func ProficiencyBonus(level int) int { return (level+3)/4 + 1 }

// Modifier returns the ability modifier for score: ⌊(score-10)/2⌋.
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((1 - d) / 2)
	}
	return d / 2
}

// AverageHitPoints returns the class hit points before Constitution: the full
// die at level 1 plus ⌊sides/2⌋+1 per level after.
//
// Precondition: level >= 1, sides >= 2.
func AverageHitPoints(level, sides int) int {
	return sides + (level-1)*(sides/2+1)
}

// HitPoints adds the Constitution modifier for every level to base and never
// drops below one point per level.
//
// Precondition: level >= 1.
func HitPoints(level, base, conMod int) int {
	return max(level, base+conMod*level)
}
