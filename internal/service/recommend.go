package service

import (
	"tongue-analyzer/internal/model"
)

// recommendations maps each constitution to its product. Exactly one entry
// per known constitution; Balanced doubles as the default for anything the
// lookup does not recognize.
var recommendations = map[model.Constitution]model.Recommendation{
	model.QiDeficiency: {
		Name:      "Ginseng Vitality Elixir",
		ProductID: "drink-1",
		Desc:      "Specially formulated for Qi Deficiency constitution",
	},
	model.YangDeficiency: {
		Name:      "Warming Ginger Tonic",
		ProductID: "drink-2",
		Desc:      "Specially formulated for Yang Deficiency constitution",
	},
	model.YinDeficiency: {
		Name:      "Cooling Chrysanthemum Tea",
		ProductID: "drink-3",
		Desc:      "Specially formulated for Yin Deficiency constitution",
	},
	model.PhlegmDampness: {
		Name:      "Bamboo Detox Elixir",
		ProductID: "drink-1",
		Desc:      "Specially formulated for Phlegm Dampness constitution",
	},
	model.DampHeat: {
		Name:      "Cooling Mint Infusion",
		ProductID: "drink-2",
		Desc:      "Specially formulated for Damp Heat constitution",
	},
	model.BloodStasis: {
		Name:      "Rose Circulation Blend",
		ProductID: "drink-3",
		Desc:      "Specially formulated for Blood Stasis constitution",
	},
	model.QiStagnation: {
		Name:      "Jasmine Calm Tea",
		ProductID: "drink-1",
		Desc:      "Specially formulated for Qi Stagnation constitution",
	},
	model.Balanced: {
		Name:      "Daily Balance Elixir",
		ProductID: "drink-2",
		Desc:      "Specially formulated for Balanced constitution",
	},
}

// Recommend returns the product recommendation for a constitution. Unknown
// or absent labels resolve to the Balanced entry.
func Recommend(c model.Constitution) model.Recommendation {
	if rec, ok := recommendations[c]; ok {
		return rec
	}
	return recommendations[model.Balanced]
}
