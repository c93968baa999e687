// Package engine implements batch scaling and procurement aggregation for
// bar recipes: scaling a recipe to a target production volume under a batch
// type policy, projecting package costs onto the scaled lines, and folding
// order line items from many suppliers into one reconciled table per
// ingredient.
//
// The engine is a library. It performs no I/O of its own; catalog reads,
// ingredient creation and bottle lookups arrive through small collaborator
// interfaces, and every computation is idempotent given the same inputs.
// The only state it owns are the session-scoped caches held by Session.
package engine

// ScaledRecipe is the result of scaling a recipe to a target volume.
type ScaledRecipe struct {
	TotalVolume  float64 `json:"total_volume_ml"`
	TargetVolume float64 `json:"target_volume_ml"`
	Factor       float64 `json:"factor"`
	Lines        []Line  `json:"lines"`
}

// ScaleRecipe computes the scale factor for a target volume and applies it
// to the volume lines. A zero factor means the recipe is not scalable with
// the given inputs; the lines are then returned unscaled.
func ScaleRecipe(lines []Line, targetVolume float64) ScaledRecipe {
	factor := ScaleFactor(lines, targetVolume)
	return ScaledRecipe{
		TotalVolume:  TotalVolume(lines),
		TargetVolume: targetVolume,
		Factor:       factor,
		Lines:        ScaleLines(lines, factor),
	}
}
