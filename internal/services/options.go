package services

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/repo"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/usecases/collect_changes"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/usecases/process_changes"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
	productrepo "github.com/light-bringer/procat-changeset/internal/app/product/repo"
	"github.com/light-bringer/procat-changeset/internal/app/product/usecases/edit_product"
	"github.com/light-bringer/procat-changeset/internal/app/product/usecases/seed_catalog"
	"github.com/light-bringer/procat-changeset/internal/config"
	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/internal/pkg/clock"
	"github.com/light-bringer/procat-changeset/internal/pkg/committer"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	DB          *gorm.DB
	UnitOfWork  *repo.UnitOfWork
	Collector   *collect_changes.Interactor
	Processor   *process_changes.Interactor
	EditProduct *edit_product.Interactor
	SeedCatalog *seed_catalog.Interactor
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(cfg config.Config, log *slog.Logger) (*ServiceOptions, error) {
	// 1. Open the catalog database
	db, err := OpenDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	// 2. Create infrastructure components
	clk := clock.NewRealClock()
	comm := committer.NewCommitter(db)
	meta, err := repo.NewGormMetadata(db, m_catalog.All()...)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to build metadata: %w", err)
	}
	uow := repo.NewUnitOfWork(meta)

	// 3. Create change set use cases
	collector := collect_changes.NewInteractor(uow, meta, collect_changes.WithLogger(log))
	visitorFactory := visitors.NewProcessorVisitorFactory(FormatOptions(cfg.Report), cfg.Report.AcceptedFieldsByType())
	processor := process_changes.NewInteractor(collector, meta, visitorFactory)

	// 4. Create catalog use cases
	productRepo := productrepo.NewProductRepo(db)
	editProduct := edit_product.NewInteractor(productRepo, uow, processor, comm, clk)
	seedCatalog := seed_catalog.NewInteractor(productRepo, clk)

	return &ServiceOptions{
		DB:          db,
		UnitOfWork:  uow,
		Collector:   collector,
		Processor:   processor,
		EditProduct: editProduct,
		SeedCatalog: seedCatalog,
	}, nil
}

// OpenDatabase opens the sqlite catalog and migrates its tables.
func OpenDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(m_catalog.All()...); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return db, nil
}

// FormatOptions converts the report settings to visitor format options.
func FormatOptions(cfg config.ReportConfig) visitors.FormatOptions {
	return visitors.FormatOptions{
		DateLayouts: map[domain.TemporalKind]string{
			domain.TemporalDate:     cfg.DateFormats.Date,
			domain.TemporalTime:     cfg.DateFormats.Time,
			domain.TemporalDateTime: cfg.DateFormats.DateTime,
		},
		BooleanLabels: visitors.BooleanLabels{
			Checked:   cfg.BooleanLabels.Checked,
			Unchecked: cfg.BooleanLabels.Unchecked,
		},
		FloatPrecision: cfg.FloatPrecision,
	}
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.DB != nil {
		closeDB(s.DB)
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
