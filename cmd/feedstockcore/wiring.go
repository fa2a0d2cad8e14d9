package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	blobcore "feedstockcore/internal/blob/core"
	"feedstockcore/internal/config"
	"feedstockcore/internal/core"
	"feedstockcore/internal/gis"
	"feedstockcore/internal/refdata"
	"feedstockcore/internal/reports"
	"feedstockcore/internal/soiltemp"
	"feedstockcore/pkg/domain"
)

// Default reference table file names under data.source_path, matching the
// names the agronomy team publishes them under.
const (
	defaultBreakdownFile   = "verity_chemical_product_breakdown_table.csv"
	defaultCoverCropFile   = "fd_cic_cover_crop_table.csv"
	defaultConversionsFile = "unit_conversions.csv"
)

func reportsStore(artifacts reports.Artifacts) domain.ReportStore {
	return reports.NewStore(artifacts)
}

func blobReportsStore(blobs blobcore.Store, prefix string) domain.ReportStore {
	return reports.NewStore(reports.NewBlobArtifacts(blobs, prefix))
}

// buildPipeline loads the reference tables and wires every collaborator of
// the pipeline core.
func buildPipeline(ctx context.Context, cfg config.Config, store domain.ReportStore, log core.Logger) (core.Pipeline, error) {
	dataPath := func(configured, fallback string) string {
		if configured != "" {
			return configured
		}
		return filepath.Join(cfg.Data.SourcePath, fallback)
	}

	catalog, err := refdata.LoadCatalog(dataPath(cfg.Data.ProductBreakdown, defaultBreakdownFile))
	if err != nil {
		return core.Pipeline{}, err
	}
	coverCrops, err := refdata.LoadCoverCrops(dataPath(cfg.Data.CoverCropTable, defaultCoverCropFile))
	if err != nil {
		return core.Pipeline{}, err
	}
	converter, err := refdata.LoadConverter(dataPath(cfg.Data.UnitConversions, defaultConversionsFile), log)
	if err != nil {
		return core.Pipeline{}, err
	}

	locations, err := store.LoadLocations(ctx, domain.ReportKey{
		Grower: grower, GrowingCycle: cycle, Type: domain.ReportShapefileOverview,
	})
	if err != nil {
		return core.Pipeline{}, err
	}

	return core.Pipeline{
		Store:             store,
		GIS:               gis.NewResolver(locations),
		SoilTemp:          soiltemp.NewClient(cfg.SoilAPI.URL, nil),
		Catalog:           catalog,
		CoverCrops:        coverCrops,
		Converter:         converter,
		AppendOnlySources: cfg.Merge.AppendOnlySources,
		Metrics:           core.NewExpvarMetricsRecorder("pipeline"),
		Log:               log,
	}, nil
}

var (
	verifiedPath    string
	locationsPath   string
	splitFieldsPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import grower reference reports into the store",
	Long: `Imports the verified-fields report, the shapefile overview, and the
split-field report for a grower and cycle. The decision-matrix stage
reads all three from the report store.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		return runImport(cmd.Context(), store)
	},
}

func init() {
	importCmd.Flags().StringVar(&verifiedPath, "verified", "", "verified fields CSV")
	importCmd.Flags().StringVar(&locationsPath, "locations", "", "shapefile overview CSV")
	importCmd.Flags().StringVar(&splitFieldsPath, "split-fields", "", "split field report CSV")
	importCmd.Flags().StringVar(&attestationsPath, "file", "", "attestation overwrite workbook (.xlsx)")
}

func runImport(ctx context.Context, store domain.ReportStore) error {
	if verifiedPath == "" && locationsPath == "" && splitFieldsPath == "" && attestationsPath == "" {
		return fmt.Errorf("nothing to import, pass --verified, --locations, --split-fields or --file")
	}
	reportKey := func(t domain.ReportType) domain.ReportKey {
		return domain.ReportKey{Grower: grower, GrowingCycle: cycle, Type: t}
	}

	if verifiedPath != "" {
		data, err := os.ReadFile(verifiedPath)
		if err != nil {
			return fmt.Errorf("read verified fields: %w", err)
		}
		fields, err := reports.DecodeVerified(data)
		if err != nil {
			return fmt.Errorf("parse verified fields: %w", err)
		}
		if err := store.SaveVerified(ctx, reportKey(domain.ReportVerifiedFields), fields); err != nil {
			return err
		}
	}
	if locationsPath != "" {
		data, err := os.ReadFile(locationsPath)
		if err != nil {
			return fmt.Errorf("read shapefile overview: %w", err)
		}
		locations, err := reports.DecodeLocations(data)
		if err != nil {
			return fmt.Errorf("parse shapefile overview: %w", err)
		}
		if err := store.SaveLocations(ctx, reportKey(domain.ReportShapefileOverview), locations); err != nil {
			return err
		}
	}
	if splitFieldsPath != "" {
		data, err := os.ReadFile(splitFieldsPath)
		if err != nil {
			return fmt.Errorf("read split field report: %w", err)
		}
		records, err := reports.DecodeSplitFields(data)
		if err != nil {
			return fmt.Errorf("parse split field report: %w", err)
		}
		if err := store.SaveSplitFields(ctx, reportKey(domain.ReportSplitField), records); err != nil {
			return err
		}
	}
	if attestationsPath != "" {
		if err := importAttestations(ctx, store); err != nil {
			return err
		}
	}
	return nil
}
