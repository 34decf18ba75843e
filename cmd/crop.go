package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/photocrop/internal/config"
	"github.com/example/photocrop/internal/editor"
	"github.com/example/photocrop/internal/export"
	"github.com/example/photocrop/internal/transcode"
)

var cropCmd = &cobra.Command{
	Use:   "crop [job-file...]",
	Short: "Crop and export photos from yaml job files",
	Long: `Crop runs one or more batch jobs. A job file describes the crop frame,
an optional maximum output width, and up to five photos with the scale
and translation each should be exported with:

  frame:
    width: 1080
    height: 1350
  max_width: 2048
  out_dir: exported
  photos:
    - path: beach.jpg
      scale: 1.4
      translate_x: -30
    - path: sunset.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().String("out", "", "Output directory (overrides the job file)")
}

// probeSize reads the pixel dimensions of an image file.
func probeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// buildSession turns a job into a ready-to-export editing session. The
// transforms are applied through the same gesture path an interactive
// editor uses, so they settle to clamped, in-bounds values.
func buildSession(job *config.Job, itemExtent float64) (*editor.Session, error) {
	sess := editor.NewSession(job.Frame.Width, job.Frame.Height, itemExtent)

	for _, photo := range job.Photos {
		id, err := sess.AddPhoto(photo.Path)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", photo.Path, err)
		}

		w, h, err := probeSize(photo.Path)
		if err != nil {
			// Not fatal: the photo exports as its original.
			fmt.Printf("Warning: %s: %v\n", photo.Path, err)
		} else if err := sess.ResolveSourceSize(id, float64(w), float64(h)); err != nil {
			return nil, fmt.Errorf("sizing %s: %w", photo.Path, err)
		}

		sess.PinchUpdate(id, photo.Scale)
		sess.PinchEnd(id)
		sess.PanUpdate(id, photo.TranslateX, photo.TranslateY)
		sess.PanEnd(id)
	}

	return sess, nil
}

func runCrop(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	outFlag := mustGetString(cmd, "out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, jobPath := range args {
		job, err := config.LoadJob(jobPath)
		if err != nil {
			return fmt.Errorf("%s: %w", jobPath, err)
		}

		outDir := cfg.Export.OutDir
		if job.OutDir != "" {
			outDir = job.OutDir
		}
		if outFlag != "" {
			outDir = outFlag
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", outDir, err)
		}

		maxWidth := job.MaxWidth
		if maxWidth == 0 {
			maxWidth = cfg.Export.MaxWidth
		}

		sess, err := buildSession(job, cfg.Editor.ItemExtent)
		if err != nil {
			return fmt.Errorf("%s: %w", jobPath, err)
		}

		bar := progressbar.NewOptions(sess.Len(),
			progressbar.OptionSetDescription(fmt.Sprintf("Exporting %s", jobPath)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)

		exporter := export.New(transcode.NewFileTranscoder(outDir, cfg.Export.Quality))
		result := exporter.Export(ctx, sess, export.Options{
			MaxWidth:    maxWidth,
			Concurrency: cfg.Export.Concurrency,
			OnProgress:  func(done, total int) { bar.Add(1) },
		})
		fmt.Println()

		for i, ref := range result.Refs {
			marker := " "
			if i == result.CoverIndex {
				marker = "*"
			}
			fmt.Printf("%s %d: %s\n", marker, i, ref)
		}
		if len(result.Errors) > 0 {
			fmt.Printf("%d photo(s) kept their original file:\n", len(result.Errors))
			for _, err := range result.Errors {
				fmt.Printf("  - %v\n", err)
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
