package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

// CatalogOwnerID owns every monster imported from the bundled bestiary.
var CatalogOwnerID = userdomain.CatalogOwnerID

const (
	CatalogOwnerName  = userdomain.CatalogOwnerName
	CatalogOwnerEmail = userdomain.CatalogOwnerEmail
)

type Monster struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Meta                string    `json:"meta"`
	ArmorClass          string    `json:"armor_class"`
	HitPoints           string    `json:"hit_points"`
	Speed               string    `json:"speed"`
	Str                 int16     `json:"str"`
	Dex                 int16     `json:"dex"`
	Con                 int16     `json:"con"`
	Int                 int16     `json:"int"`
	Wis                 int16     `json:"wis"`
	Cha                 int16     `json:"cha"`
	SavingThrows        string    `json:"saving_throws"`
	Skills              string    `json:"skills"`
	Senses              string    `json:"senses"`
	Languages           string    `json:"languages"`
	Challenge           float32   `json:"challenge"`
	Traits              *string   `json:"traits"`
	Actions             string    `json:"actions"`
	DamageImmunities    *string   `json:"damage_immunities"`
	ConditionImmunities *string   `json:"condition_immunities"`
	LegendaryActions    *string   `json:"legendary_actions"`
	ImgURL              string    `json:"img_url"`
	UserID              uuid.UUID `json:"user_id"`
}

// Record is a bestiary entry as stored in the seed file and accepted by the
// API. Challenge is free text such as "1/4 (50 XP)".
type Record struct {
	Name                string  `json:"name" validate:"required,max=255"`
	Meta                string  `json:"meta"`
	ArmorClass          string  `json:"armor_class"`
	HitPoints           string  `json:"hit_points"`
	Speed               string  `json:"speed"`
	Str                 int16   `json:"str" validate:"gte=0,lte=30"`
	Dex                 int16   `json:"dex" validate:"gte=0,lte=30"`
	Con                 int16   `json:"con" validate:"gte=0,lte=30"`
	Int                 int16   `json:"int" validate:"gte=0,lte=30"`
	Wis                 int16   `json:"wis" validate:"gte=0,lte=30"`
	Cha                 int16   `json:"cha" validate:"gte=0,lte=30"`
	SavingThrows        string  `json:"saving_throws"`
	Skills              string  `json:"skills"`
	Senses              string  `json:"senses"`
	Languages           string  `json:"languages"`
	Challenge           string  `json:"challenge"`
	Traits              *string `json:"traits"`
	Actions             string  `json:"actions"`
	DamageImmunities    *string `json:"damage_immunities"`
	ConditionImmunities *string `json:"condition_immunities"`
	LegendaryActions    *string `json:"legendary_actions"`
	ImgURL              string  `json:"img_url"`
}

// ToMonster builds a Monster with the given id and owner.
func (r Record) ToMonster(id, owner uuid.UUID) Monster {
	return Monster{
		ID:                  id,
		Name:                r.Name,
		Meta:                r.Meta,
		ArmorClass:          r.ArmorClass,
		HitPoints:           r.HitPoints,
		Speed:               r.Speed,
		Str:                 r.Str,
		Dex:                 r.Dex,
		Con:                 r.Con,
		Int:                 r.Int,
		Wis:                 r.Wis,
		Cha:                 r.Cha,
		SavingThrows:        r.SavingThrows,
		Skills:              r.Skills,
		Senses:              r.Senses,
		Languages:           r.Languages,
		Challenge:           ParseChallenge(r.Challenge),
		Traits:              r.Traits,
		Actions:             r.Actions,
		DamageImmunities:    r.DamageImmunities,
		ConditionImmunities: r.ConditionImmunities,
		LegendaryActions:    r.LegendaryActions,
		ImgURL:              r.ImgURL,
		UserID:              owner,
	}
}

// ParseChallenge reads the rating from the first token of s. Fractions 1/8,
// 1/4 and 1/2 are recognized; anything unparsable is 0.
func ParseChallenge(s string) float32 {
	token, _, _ := strings.Cut(s, " ")
	switch token {
	case "1/8":
		return 0.125
	case "1/4":
		return 0.25
	case "1/2":
		return 0.5
	}
	v, err := strconv.ParseFloat(token, 32)
	if err != nil {
		return 0
	}
	return float32(v)
}
