package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/internal/phantom"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/config"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/ingest"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/series"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/volume"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing DICOM instances (.dcm)")
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	demo := flag.Bool("demo", false, "Build a synthetic CT phantom series instead of reading files")
	saveMPR := flag.Bool("mpr", false, "Export center axial/sagittal/coronal planes as JPEG")
	mprDir := flag.String("mpr-dir", "", "Directory for exported planes (overrides config)")
	workers := flag.Int("workers", 0, "Number of concurrent slice workers (overrides config)")
	flag.Parse()

	if *inputDir == "" && !*demo {
		flag.Usage()
		log.Fatal("either -input or -demo is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if *saveMPR {
		cfg.Output.SaveMPR = true
	}
	if *mprDir != "" {
		cfg.Output.MPRDir = *mprDir
	}

	fmt.Println("================================")
	fmt.Println("DICOM SERIES ORDERING AND VOLUMETRIC RECONSTRUCTION")
	fmt.Println("================================")

	// Step 1: Collect the instance batch
	fmt.Println("Step 1: Loading instances...")
	var instances []*dicom.Instance
	if *demo {
		instances = phantom.CTSeries(32, 128, 128, 2.0)
		fmt.Println("Generated a 32-slice synthetic CT phantom")
	} else {
		instances, err = ingest.ReadDir(*inputDir)
		if err != nil {
			log.Fatalf("Failed to read input directory: %v", err)
		}
	}
	if len(instances) == 0 {
		log.Fatal("No instances found")
	}
	fmt.Printf("Loaded %d instances\n", len(instances))

	// Step 2: Group by series
	bySeries := make(map[string][]*dicom.Instance)
	var order []string
	for _, in := range instances {
		if _, seen := bySeries[in.SeriesInstanceUID]; !seen {
			order = append(order, in.SeriesInstanceUID)
		}
		bySeries[in.SeriesInstanceUID] = append(bySeries[in.SeriesInstanceUID], in)
	}
	fmt.Printf("Step 2: Found %d series\n", len(bySeries))

	builder := volume.NewBuilder(volume.NewCache(cfg.Cache.MaxEntries))
	opts := volume.Options{
		Interpolation: cfg.Processing.Interpolation,
		QualityLevel:  cfg.Processing.QualityLevel,
		Workers:       cfg.Processing.Workers,
	}
	if cfg.Output.Verbose {
		opts.Progress = func(fraction float64) {
			fmt.Printf("\rBuilding volume: %.1f%% complete", fraction*100)
		}
	}

	for _, uid := range order {
		batch := bySeries[uid]

		// Step 3: Sort the series
		fmt.Printf("\nStep 3: Sorting series %s (%d instances)...\n", uid, len(batch))
		sorted, err := series.Sort(batch)
		if err != nil {
			log.Printf("Skipping series %s: %v", uid, err)
			continue
		}
		fmt.Printf("Classification: %s\n", sorted.Classification)
		fmt.Printf("Confidence: %.3f", sorted.Confidence)
		if sorted.Confidence <= series.WellSortedConfidence {
			fmt.Printf(" (possible resort needed)")
		}
		fmt.Println()
		if sorted.ReversedCorrected {
			fmt.Println("Reversed slice order detected and corrected")
		}

		// Step 4: Build the volume
		fmt.Println("Step 4: Building volume...")
		startTime := time.Now()
		vol, err := builder.Build(context.Background(), sorted, opts)
		if err != nil {
			log.Printf("Skipping series %s: %v", uid, err)
			continue
		}
		fmt.Printf("\nBuilt %s volume in %.2f seconds\n", vol.Format, time.Since(startTime).Seconds())

		d := vol.Meta.Dimensions
		s := vol.Meta.Spacing
		fmt.Printf("Dimensions: %dx%dx%d voxels\n", d.X, d.Y, d.Z)
		fmt.Printf("Spacing: %.3f x %.3f x %.3f mm\n", s.X, s.Y, s.Z)
		fmt.Printf("Default preset: %s (window %.0f / level %.0f)\n",
			vol.DefaultPreset, vol.DefaultWindow().Window, vol.DefaultWindow().Level)

		// Step 5: Export center planes if requested
		if cfg.Output.SaveMPR {
			fmt.Println("Step 5: Exporting center planes...")
			wl := vol.DefaultWindow()
			exports := []struct {
				plane volume.Plane
				index int
			}{
				{volume.PlaneAxial, d.Z / 2},
				{volume.PlaneSagittal, d.X / 2},
				{volume.PlaneCoronal, d.Y / 2},
			}
			for _, e := range exports {
				path := filepath.Join(cfg.Output.MPRDir, uid, fmt.Sprintf("%s_%03d.jpg", e.plane, e.index))
				if err := vol.SavePlaneJPEG(e.plane, e.index, wl, path); err != nil {
					log.Printf("Warning: failed to export %s plane: %v", e.plane, err)
					continue
				}
				fmt.Printf("Saved %s\n", path)
			}
		}
	}

	stats := builder.Cache().Stats()
	fmt.Printf("\nVolume cache: %d entries, %d hits, %d misses\n", stats.Size, stats.Hits, stats.Misses)
}
