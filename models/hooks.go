package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned app-side so callers can reference a row before the insert
// returns and so non-Postgres test databases behave the same.

func (a *Athlete) BeforeCreate(tx *gorm.DB) error           { ensureID(&a.ID); return nil }
func (d *Domain) BeforeCreate(tx *gorm.DB) error            { ensureID(&d.ID); return nil }
func (c *Category) BeforeCreate(tx *gorm.DB) error          { ensureID(&c.ID); return nil }
func (e *EquipmentItem) BeforeCreate(tx *gorm.DB) error     { ensureID(&e.ID); return nil }
func (d *Division) BeforeCreate(tx *gorm.DB) error          { ensureID(&d.ID); return nil }
func (c *Challenge) BeforeCreate(tx *gorm.DB) error         { ensureID(&c.ID); return nil }
func (g *Grade) BeforeCreate(tx *gorm.DB) error             { ensureID(&g.ID); return nil }
func (s *Submission) BeforeCreate(tx *gorm.DB) error        { ensureID(&s.ID); return nil }
func (p *ProgressionRecord) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (l *LevelThreshold) BeforeCreate(tx *gorm.DB) error    { ensureID(&l.ID); return nil }
func (r *RankDefinition) BeforeCreate(tx *gorm.DB) error    { ensureID(&r.ID); return nil }
func (r *RankRequirement) BeforeCreate(tx *gorm.DB) error   { ensureID(&r.ID); return nil }
func (a *AthleteRank) BeforeCreate(tx *gorm.DB) error       { ensureID(&a.ID); return nil }
func (a *ActivityMirror) BeforeCreate(tx *gorm.DB) error    { ensureID(&a.ID); return nil }

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
