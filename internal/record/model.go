package record

import (
	"time"

	"gorm.io/gorm"
)

// Models is every table the recorder migrates.
var Models = []interface{}{
	&Battle{},
	&ResolutionRecord{},
}

// Battle is one recorded run.
type Battle struct {
	gorm.Model
	Scenario  string     `json:"scenario" gorm:"size:120"`
	Seed      int64      `json:"seed"`
	StartedAt time.Time  `json:"startedAt" gorm:"index:idx_battle_started"`
	EndedAt   *time.Time `json:"endedAt"`
	Ticks     int        `json:"ticks"`
	Outcome   string     `json:"outcome" gorm:"size:32"`
	Winner    string     `json:"winner" gorm:"size:120"`
	Summary   string     `json:"summary" gorm:"size:500"`

	Resolutions []ResolutionRecord `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// ResolutionRecord is one resolved request.
type ResolutionRecord struct {
	ID       uint `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID uint `json:"battleId" gorm:"index:idx_resolution_battle"`
	Tick     int  `json:"tick" gorm:"index:idx_resolution_tick"`

	Unit      string `json:"unit" gorm:"size:40"`
	Faction   string `json:"faction" gorm:"size:120"`
	Kind      string `json:"kind" gorm:"size:16;index:idx_resolution_kind"`
	Direction string `json:"direction" gorm:"size:8"`
	Result    string `json:"result" gorm:"size:32"` // "resolved" or failure key
	Target    int    `json:"target"`                 // -1 when untargeted

	Hit         bool `json:"hit"`
	Chance      int  `json:"chance"`
	HPDamage    int  `json:"hpDamage"`
	ArmorDamage int  `json:"armorDamage"`
	Restored    int  `json:"restored"`
	Defeated    bool `json:"defeated"`

	X      int `json:"x"`
	Y      int `json:"y"`
	Energy int `json:"energy"`
}

func (r *ResolutionRecord) TableName() string {
	return "resolutions"
}
