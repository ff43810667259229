package policy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GradeTier is one rung of a policy's grade schedule: reaching Threshold
// qualifying orders within a period unlocks Level and its per-order bonus.
type GradeTier struct {
	Threshold     int             `json:"threshold"`
	Level         int             `json:"level"`
	BonusPerOrder decimal.Decimal `json:"bonus_per_order"`
}

// GradeTiers is an ordered grade schedule that implements GORM Scanner/Valuer
// for JSONB storage. Tiers must be strictly ascending by threshold and level.
type GradeTiers []GradeTier

// Value implements driver.Valuer interface for GORM to store as JSONB
func (g GradeTiers) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (g *GradeTiers) Scan(value interface{}) error {
	if value == nil {
		*g = GradeTiers{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan GradeTiers: unsupported type")
	}

	if len(bytes) == 0 {
		*g = GradeTiers{}
		return nil
	}

	return json.Unmarshal(bytes, g)
}

// Validate checks the schedule is well formed
func (g GradeTiers) Validate() error {
	prevThreshold := 0
	prevLevel := 0
	for i, tier := range g {
		if tier.Threshold <= prevThreshold {
			return shared.NewDomainError("INVALID_GRADE_SCHEDULE",
				fmt.Sprintf("Tier %d threshold %d must exceed previous threshold %d", i, tier.Threshold, prevThreshold))
		}
		if tier.Level <= prevLevel {
			return shared.NewDomainError("INVALID_GRADE_SCHEDULE",
				fmt.Sprintf("Tier %d level %d must exceed previous level %d", i, tier.Level, prevLevel))
		}
		if tier.BonusPerOrder.IsNegative() {
			return shared.NewDomainError("INVALID_GRADE_SCHEDULE",
				fmt.Sprintf("Tier %d bonus per order cannot be negative", i))
		}
		prevThreshold = tier.Threshold
		prevLevel = tier.Level
	}
	return nil
}

// Evaluate returns the level and bonus-per-order for the given order count:
// the highest tier whose threshold does not exceed orders. Level 0 with zero
// bonus means no tier reached.
func (g GradeTiers) Evaluate(orders int) (level int, bonusPerOrder decimal.Decimal) {
	bonusPerOrder = decimal.Zero
	for _, tier := range g {
		if orders >= tier.Threshold {
			level = tier.Level
			bonusPerOrder = tier.BonusPerOrder
		} else {
			break
		}
	}
	return level, bonusPerOrder
}

// TierForLevel returns the tier carrying the given level, or nil
func (g GradeTiers) TierForLevel(level int) *GradeTier {
	for i := range g {
		if g[i].Level == level {
			return &g[i]
		}
	}
	return nil
}
