package wargame

// TerrainType enumerates the recognized territory terrains (§3).
const (
	TerrainPlains   = "plains"
	TerrainMountain = "mountain"
	TerrainDesert   = "desert"
	TerrainForest   = "forest"
	TerrainCity     = "city"
	TerrainOcean    = "ocean"
	TerrainLake     = "lake"
	TerrainSea      = "sea"
	TerrainWater    = "water"
)

var waterTerrain = map[string]bool{
	TerrainOcean: true, TerrainLake: true, TerrainSea: true, TerrainWater: true,
}

// IsWaterTerrain reports whether a terrain_type is a water terrain.
func IsWaterTerrain(terrain string) bool { return waterTerrain[terrain] }

// terrainEntryCost is the MP charged on entering a territory of a given
// terrain. Naval units always pay 1 MP per water step regardless of
// which water terrain it is (§4.4).
func terrainEntryCost(terrain string, naval bool) int {
	if naval {
		return 1
	}
	switch terrain {
	case TerrainMountain:
		return 3
	case TerrainDesert:
		return 2
	default:
		return 1
	}
}
