package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Planting defaults applied when a record is created without them.
const (
	DefaultDaysToHarvest  = 120
	DefaultYieldTonPerRai = 1.5
	DefaultStatus         = "planted"
)

const pendingCodePrefix = "pending-"

// ErrReservedCode is returned when a caller supplies a code shaped like a
// generated one that does not belong to the record
var ErrReservedCode = errors.New("farmer code is reserved for generated codes")

var generatedCode = regexp.MustCompile(`^F[0-9]{4,}$`)

// Farmer represents a grower registered on the platform
type Farmer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code     string `gorm:"not null;size:32;uniqueIndex:idx_farmers_code,where:deleted_at IS NULL" json:"code"`
	Name     string `gorm:"not null;size:255" json:"name"`
	Phone    string `gorm:"size:32" json:"phone"`
	Village  string `gorm:"size:255" json:"village"`
	District string `gorm:"size:255" json:"district"`
	Province string `gorm:"size:255" json:"province"`
}

// TableName specifies the table name for Farmer
func (Farmer) TableName() string {
	return "farmers"
}

// BeforeSave keeps the F%04d namespace for generated codes: a farmer may
// only carry one if it matches its own id
func (f *Farmer) BeforeSave(tx *gorm.DB) error {
	if generatedCode.MatchString(f.Code) && (f.ID == 0 || f.Code != FarmerCode(f.ID)) {
		return fmt.Errorf("%w: %s", ErrReservedCode, f.Code)
	}
	return nil
}

// BeforeCreate reserves a unique placeholder code when none was supplied;
// AfterCreate replaces it with one derived from the primary key.
func (f *Farmer) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(f.Code) == "" {
		f.Code = pendingCodePrefix + uuid.NewString()[:8]
	}
	return nil
}

// AfterCreate assigns the F%04d code once the id is known
func (f *Farmer) AfterCreate(tx *gorm.DB) error {
	if !strings.HasPrefix(f.Code, pendingCodePrefix) {
		return nil
	}
	code := FarmerCode(f.ID)
	if err := tx.Model(f).Update("code", code).Error; err != nil {
		return fmt.Errorf("assign farmer code: %w", err)
	}
	f.Code = code
	return nil
}

// FarmerCode formats the public farmer code for an id
func FarmerCode(id uint) string {
	return fmt.Sprintf("F%04d", id)
}

// Plot is a parcel of land owned by a farmer. FarmerID is not enforced as a
// foreign key: a farmer removed out-of-band leaves the plot dangling.
type Plot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FarmerID     uint    `gorm:"not null;index" json:"farmer_id"`
	PlotName     string  `gorm:"not null;size:255" json:"plot_name"`
	AreaRai      float64 `gorm:"not null;default:0" json:"area_rai"`
	LocationHint string  `gorm:"size:255" json:"location_hint"`
}

// TableName specifies the table name for Plot
func (Plot) TableName() string {
	return "plots"
}

// Planting is one crop cycle on a plot
type Planting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PlotID         uint      `gorm:"not null;index" json:"plot_id"`
	Crop           string    `gorm:"size:255" json:"crop"`
	Variety        string    `gorm:"size:255" json:"variety"`
	PlantDate      time.Time `gorm:"not null;index" json:"plant_date"`
	DaysToHarvest  int       `gorm:"not null" json:"days_to_harvest"`
	YieldTonPerRai float64   `gorm:"not null" json:"yield_ton_per_rai"`
	Status         string    `gorm:"size:64" json:"status"`
	Notes          string    `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for Planting
func (Planting) TableName() string {
	return "plantings"
}

// CalendarDate drops the clock and location of t, keeping the UTC day.
// Drivers may hand timestamps back in time.Local.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PlantDay is PlantDate as a calendar date
func (p Planting) PlantDay() time.Time {
	return CalendarDate(p.PlantDate)
}

// HarvestDate is always derived from PlantDate and DaysToHarvest
func (p Planting) HarvestDate() time.Time {
	return p.PlantDay().AddDate(0, 0, p.DaysToHarvest)
}

// BeforeCreate tags a planting with the default status when none was given
func (p *Planting) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.Status) == "" {
		p.Status = DefaultStatus
	}
	return nil
}
