package model

import (
	"time"

	"github.com/google/uuid"
)

// Ruleset is a named, independently activatable bundle of pricing rules.
// Deleting a ruleset cascades to its rules; past simulations and ledger
// entries keep their snapshots untouched.
type Ruleset struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Rules []Rule `gorm:"foreignKey:RulesetID;constraint:OnDelete:CASCADE"`
}

func (Ruleset) TableName() string { return "rulesets" }
