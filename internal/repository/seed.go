package repository

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"harvest-planner/internal/model"

	"gorm.io/gorm"
)

// SeedStats reports how many records SeedDatabase inserted
type SeedStats struct {
	Farmers   int
	Plots     int
	Plantings int
}

// SeedRepository handles database seeding operations
type SeedRepository struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeedRepository creates a new seed repository. The same seed always
// produces the same data set.
func NewSeedRepository(db *gorm.DB, seed int64) *SeedRepository {
	return &SeedRepository{db: db, rand: rand.New(rand.NewSource(seed))}
}

// SeedDatabase replaces all farm records with demo farmers, plots and
// plantings whose harvests fall across the year starting at from
func (s *SeedRepository) SeedDatabase(ctx context.Context, from time.Time) (SeedStats, error) {
	var stats SeedStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearExistingData(tx); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}

		farmers, err := createFarmers(tx)
		if err != nil {
			return fmt.Errorf("failed to create farmers: %w", err)
		}

		plots, err := s.createPlots(tx, farmers)
		if err != nil {
			return fmt.Errorf("failed to create plots: %w", err)
		}

		plantings, err := s.createPlantings(tx, plots, from)
		if err != nil {
			return fmt.Errorf("failed to create plantings: %w", err)
		}

		stats = SeedStats{Farmers: len(farmers), Plots: len(plots), Plantings: plantings}
		return nil
	})
	return stats, err
}

// clearExistingData hard-deletes every farm record
func clearExistingData(tx *gorm.DB) error {
	for _, m := range []interface{}{&model.Planting{}, &model.Plot{}, &model.Farmer{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// createFarmers creates farmer entities; codes are assigned from their ids
func createFarmers(tx *gorm.DB) ([]model.Farmer, error) {
	farmers := []model.Farmer{
		{Name: "Somchai Kaewkla", Phone: "0812345678", Village: "Ban Nong Bua", District: "Mueang", Province: "Khon Kaen"},
		{Name: "Malee Srisuk", Phone: "0823456789", Village: "Ban Don Kha", District: "Nam Phong", Province: "Khon Kaen"},
		{Name: "Prasert Wongdee", Phone: "0834567890", Village: "Ban Khok Si", District: "Kumphawapi", Province: "Udon Thani"},
		{Name: "Nok Chaiyaphum", Phone: "0845678901", Village: "Ban Non Sung", District: "Phu Khiao", Province: "Chaiyaphum"},
	}

	// one at a time so each AfterCreate hook assigns a code
	for i := range farmers {
		if err := tx.Create(&farmers[i]).Error; err != nil {
			return nil, err
		}
	}
	return farmers, nil
}

// createPlots creates two or three plots for each farmer
func (s *SeedRepository) createPlots(tx *gorm.DB, farmers []model.Farmer) ([]model.Plot, error) {
	plots := []model.Plot{}
	for _, farmer := range farmers {
		n := s.rand.Intn(2) + 2
		for i := 1; i <= n; i++ {
			plots = append(plots, model.Plot{
				FarmerID:     farmer.ID,
				PlotName:     fmt.Sprintf("%s plot %d", farmer.Village, i),
				AreaRai:      float64(s.rand.Intn(40)+5) / 2.0, // 2.5 - 22 rai
				LocationHint: fmt.Sprintf("%s, %s", farmer.District, farmer.Province),
			})
		}
	}

	if err := tx.Create(&plots).Error; err != nil {
		return nil, err
	}
	return plots, nil
}

var seedVarieties = []string{"KK3", "LK92-11", "Khon Kaen 3", "UT12", "KPS01-12"}

var seedStatuses = []string{model.DefaultStatus, "growing", "harvested"}

// createPlantings plants each plot once or twice with staggered dates
func (s *SeedRepository) createPlantings(tx *gorm.DB, plots []model.Plot, from time.Time) (int, error) {
	batch := []model.Planting{}
	for _, plot := range plots {
		cycles := s.rand.Intn(2) + 1
		for i := 0; i < cycles; i++ {
			days := 90 + s.rand.Intn(61) // 90-150 days
			// plant so the harvest lands within the twelve months after from
			plantDate := from.AddDate(0, 0, s.rand.Intn(365)-days)
			batch = append(batch, model.Planting{
				PlotID:         plot.ID,
				Crop:           "sugarcane",
				Variety:        seedVarieties[s.rand.Intn(len(seedVarieties))],
				PlantDate:      time.Date(plantDate.Year(), plantDate.Month(), plantDate.Day(), 0, 0, 0, 0, time.UTC),
				DaysToHarvest:  days,
				YieldTonPerRai: 1.0 + float64(s.rand.Intn(150))/100.0, // 1.0 - 2.49 t/rai
				Status:         seedStatuses[s.rand.Intn(len(seedStatuses))],
			})
		}
	}

	if err := tx.CreateInBatches(&batch, 100).Error; err != nil {
		return 0, fmt.Errorf("failed to create planting batch: %w", err)
	}
	return len(batch), nil
}
