package wargame

import "testing"

func TestDefaultUnitTypesAreUniquelyNamed(t *testing.T) {
	seen := map[string]bool{}
	for _, ut := range DefaultUnitTypes(testGuild) {
		if seen[ut.TypeName] {
			t.Errorf("duplicate unit type name %q", ut.TypeName)
		}
		seen[ut.TypeName] = true
		if ut.GuildID != testGuild {
			t.Errorf("unit type %q GuildID = %d, want %d", ut.TypeName, ut.GuildID, testGuild)
		}
	}
}

func TestDefaultBuildingTypesAreUniquelyNamed(t *testing.T) {
	seen := map[string]bool{}
	for _, bt := range DefaultBuildingTypes(testGuild) {
		if seen[bt.TypeName] {
			t.Errorf("duplicate building type name %q", bt.TypeName)
		}
		seen[bt.TypeName] = true
	}
}

func TestHasKeyword(t *testing.T) {
	kws := []string{"naval", "submarine"}
	if !hasKeyword(kws, "naval") {
		t.Error("expected naval to be found")
	}
	if hasKeyword(kws, "aerial") {
		t.Error("aerial should not be found")
	}
	if hasKeyword(nil, "naval") {
		t.Error("nil keyword slice should never match")
	}
}
