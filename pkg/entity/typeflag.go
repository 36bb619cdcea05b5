package entity

import "strings"

// TypeFlag classifies items for ISTYPE checks.
type TypeFlag uint32

const (
	TypeWeapon TypeFlag = 1 << iota
	TypeDagger
	Type1H
	Type2H
	TypeBow
	TypeShield
	TypeFood
	TypeGold
	TypeArmor
	TypeHelmet
	TypeRing
	TypeLeggings
)

var typeFlagNames = map[string]TypeFlag{
	"weapon":   TypeWeapon,
	"dagger":   TypeDagger,
	"1h":       Type1H,
	"2h":       Type2H,
	"bow":      TypeBow,
	"shield":   TypeShield,
	"food":     TypeFood,
	"gold":     TypeGold,
	"armor":    TypeArmor,
	"helmet":   TypeHelmet,
	"ring":     TypeRing,
	"leggings": TypeLeggings,
}

// ParseTypeFlag maps a type name to its flag. Unknown names return 0.
func ParseTypeFlag(name string) TypeFlag {
	return typeFlagNames[strings.ToLower(name)]
}

// ParseTypeFlags parses a list of type names, ignoring unknown ones.
func ParseTypeFlags(names ...string) TypeFlag {
	var f TypeFlag
	for _, n := range names {
		f |= ParseTypeFlag(n)
	}
	return f
}
