package repository

import (
	"context"
	"errors"
	"fmt"

	"harvest-planner/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record with the given id does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write collides with a unique column
var ErrConflict = errors.New("record conflicts with an existing one")

// Snapshot is a complete in-memory read of every farmer, plot and planting
type Snapshot struct {
	Farmers   []model.Farmer
	Plots     []model.Plot
	Plantings []model.Planting
}

// FarmRepository defines the persistence operations for farm records
type FarmRepository interface {
	ListFarmers(ctx context.Context) ([]model.Farmer, error)
	ListPlots(ctx context.Context) ([]model.Plot, error)
	ListPlantings(ctx context.Context) ([]model.Planting, error)
	Snapshot(ctx context.Context) (*Snapshot, error)

	GetFarmer(ctx context.Context, id uint) (*model.Farmer, error)
	CreateFarmer(ctx context.Context, f *model.Farmer) error
	UpdateFarmer(ctx context.Context, f *model.Farmer) error
	DeleteFarmer(ctx context.Context, id uint) error

	GetPlot(ctx context.Context, id uint) (*model.Plot, error)
	CreatePlot(ctx context.Context, p *model.Plot) error
	UpdatePlot(ctx context.Context, p *model.Plot) error
	DeletePlot(ctx context.Context, id uint) error

	GetPlanting(ctx context.Context, id uint) (*model.Planting, error)
	CreatePlanting(ctx context.Context, p *model.Planting) error
	UpdatePlanting(ctx context.Context, p *model.Planting) error
	DeletePlanting(ctx context.Context, id uint) error
}

// farmRepository implements FarmRepository
type farmRepository struct {
	db *gorm.DB
}

// NewFarmRepository creates a new farm repository
func NewFarmRepository(db *gorm.DB) FarmRepository {
	return &farmRepository{db: db}
}

// listAll reads every live row of T ordered by id
func listAll[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	out := []T{}
	if err := db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var out T
	err := db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// save overwrites every column of an existing row except its creation and
// deletion stamps; a missing row is ErrNotFound rather than an insert
func save[T any](ctx context.Context, db *gorm.DB, id uint, rec *T) error {
	if _, err := getByID[T](ctx, db, id); err != nil {
		return err
	}
	return db.WithContext(ctx).Model(rec).Select("*").Omit("id", "created_at", "deleted_at").Updates(rec).Error
}

// conflict maps the driver's duplicate-key error onto ErrConflict
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	var zero T
	res := db.WithContext(ctx).Delete(&zero, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// ListFarmers returns every farmer
func (r *farmRepository) ListFarmers(ctx context.Context) ([]model.Farmer, error) {
	return listAll[model.Farmer](ctx, r.db)
}

// ListPlots returns every plot
func (r *farmRepository) ListPlots(ctx context.Context) ([]model.Plot, error) {
	return listAll[model.Plot](ctx, r.db)
}

// ListPlantings returns every planting in id order
func (r *farmRepository) ListPlantings(ctx context.Context) ([]model.Planting, error) {
	return listAll[model.Planting](ctx, r.db)
}

// Snapshot loads all three tables in one read transaction so the joins see
// a consistent view
func (r *farmRepository) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Farmers, err = listAll[model.Farmer](ctx, tx); err != nil {
			return fmt.Errorf("list farmers: %w", err)
		}
		if snap.Plots, err = listAll[model.Plot](ctx, tx); err != nil {
			return fmt.Errorf("list plots: %w", err)
		}
		if snap.Plantings, err = listAll[model.Planting](ctx, tx); err != nil {
			return fmt.Errorf("list plantings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *farmRepository) GetFarmer(ctx context.Context, id uint) (*model.Farmer, error) {
	return getByID[model.Farmer](ctx, r.db, id)
}

func (r *farmRepository) CreateFarmer(ctx context.Context, f *model.Farmer) error {
	return conflict(r.db.WithContext(ctx).Create(f).Error)
}

func (r *farmRepository) UpdateFarmer(ctx context.Context, f *model.Farmer) error {
	return conflict(save(ctx, r.db, f.ID, f))
}

func (r *farmRepository) DeleteFarmer(ctx context.Context, id uint) error {
	return deleteByID[model.Farmer](ctx, r.db, id)
}

func (r *farmRepository) GetPlot(ctx context.Context, id uint) (*model.Plot, error) {
	return getByID[model.Plot](ctx, r.db, id)
}

func (r *farmRepository) CreatePlot(ctx context.Context, p *model.Plot) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *farmRepository) UpdatePlot(ctx context.Context, p *model.Plot) error {
	return save(ctx, r.db, p.ID, p)
}

func (r *farmRepository) DeletePlot(ctx context.Context, id uint) error {
	return deleteByID[model.Plot](ctx, r.db, id)
}

func (r *farmRepository) GetPlanting(ctx context.Context, id uint) (*model.Planting, error) {
	return getByID[model.Planting](ctx, r.db, id)
}

func (r *farmRepository) CreatePlanting(ctx context.Context, p *model.Planting) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *farmRepository) UpdatePlanting(ctx context.Context, p *model.Planting) error {
	return save(ctx, r.db, p.ID, p)
}

func (r *farmRepository) DeletePlanting(ctx context.Context, id uint) error {
	return deleteByID[model.Planting](ctx, r.db, id)
}
